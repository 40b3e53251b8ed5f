package domain

// RequestStatus represents the lifecycle state of a book request
type RequestStatus string

const (
	RequestPending  RequestStatus = "PENDING"
	RequestApproved RequestStatus = "APPROVED"
	RequestRejected RequestStatus = "REJECTED"
)

// Book is a catalog snapshot fetched from the book service (Read Only)
type Book struct {
	ID     uint   `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
}

// Member is an identity snapshot fetched from the member service (Read Only)
type Member struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// User is an authenticated principal from the member service, possibly
// linked to a member profile
type User struct {
	ID            uint    `json:"id"`
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	MemberProfile *Member `json:"memberProfile"`
}

// Placeholder values substituted when display enrichment cannot reach or
// find the owning store. Enrichment never aborts the primary operation.
const (
	PlaceholderUnknownBook   = "Unknown Book"
	PlaceholderUnknownMember = "Unknown Member"
	PlaceholderUnknownUser   = "Unknown User"
	PlaceholderUnavailable   = "Service Unavailable"
)

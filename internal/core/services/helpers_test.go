package services

import (
	"context"
	"fmt"
	"time"

	"library-borrowing/internal/adapters/persistence/models"
	"library-borrowing/internal/core/domain"
	"library-borrowing/internal/pkg/cache"

	"gorm.io/gorm"
)

// stubDirectory is an in-memory DirectoryClient. Unknown ids yield the
// NotFound-class errors, the *Down flags simulate an unreachable store.
type stubDirectory struct {
	books   map[uint]*domain.Book
	members map[uint]*domain.Member
	users   map[uint]*domain.User

	booksDown   bool
	membersDown bool
	usersDown   bool

	bookCalls   int
	memberCalls int
	userCalls   int
}

func newStubDirectory() *stubDirectory {
	return &stubDirectory{
		books:   make(map[uint]*domain.Book),
		members: make(map[uint]*domain.Member),
		users:   make(map[uint]*domain.User),
	}
}

func (d *stubDirectory) GetBook(ctx context.Context, id uint) (*domain.Book, error) {
	d.bookCalls++
	if d.booksDown {
		return nil, fmt.Errorf("%w: connection refused", domain.ErrRemoteUnavailable)
	}
	book, ok := d.books[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", domain.ErrBookNotFound, id)
	}
	return book, nil
}

func (d *stubDirectory) GetMember(ctx context.Context, id uint) (*domain.Member, error) {
	d.memberCalls++
	if d.membersDown {
		return nil, fmt.Errorf("%w: connection refused", domain.ErrRemoteUnavailable)
	}
	member, ok := d.members[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", domain.ErrMemberNotFound, id)
	}
	return member, nil
}

func (d *stubDirectory) GetUser(ctx context.Context, id uint) (*domain.User, error) {
	d.userCalls++
	if d.usersDown {
		return nil, fmt.Errorf("%w: connection refused", domain.ErrRemoteUnavailable)
	}
	user, ok := d.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: user %d", domain.ErrProfileNotLinked, id)
	}
	return user, nil
}

func (d *stubDirectory) ResolveMemberForUser(ctx context.Context, userID uint) (uint, error) {
	user, err := d.GetUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	if user.MemberProfile == nil || user.MemberProfile.ID == 0 {
		return 0, fmt.Errorf("%w: user %d", domain.ErrProfileNotLinked, userID)
	}
	return user.MemberProfile.ID, nil
}

// memLoanRepo is an in-memory LoanRepository. Reads hand out copies so a
// caller's mutations only land through Update, mirroring a real row fetch.
type memLoanRepo struct {
	loans  map[uint]models.Loan
	nextID uint

	createErr error
	getCalls  int
	listCalls int
}

func newMemLoanRepo() *memLoanRepo {
	return &memLoanRepo{loans: make(map[uint]models.Loan), nextID: 1}
}

func (r *memLoanRepo) Create(ctx context.Context, loan *models.Loan) error {
	if r.createErr != nil {
		return r.createErr
	}
	loan.ID = r.nextID
	r.nextID++
	r.loans[loan.ID] = *loan
	return nil
}

func (r *memLoanRepo) GetByID(ctx context.Context, id uint) (*models.Loan, error) {
	r.getCalls++
	loan, ok := r.loans[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &loan, nil
}

func (r *memLoanRepo) GetByIDForUpdate(ctx context.Context, id uint) (*models.Loan, error) {
	loan, ok := r.loans[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &loan, nil
}

func (r *memLoanRepo) Update(ctx context.Context, loan *models.Loan) error {
	if _, ok := r.loans[loan.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.loans[loan.ID] = *loan
	return nil
}

func (r *memLoanRepo) Delete(ctx context.Context, id uint) error {
	delete(r.loans, id)
	return nil
}

func (r *memLoanRepo) List(ctx context.Context, offset, limit int) ([]*models.Loan, int64, error) {
	r.listCalls++
	all := r.sorted()
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *memLoanRepo) ListByMember(ctx context.Context, memberID uint) ([]*models.Loan, error) {
	var result []*models.Loan
	for _, loan := range r.sorted() {
		if loan.MemberID == memberID {
			result = append(result, loan)
		}
	}
	return result, nil
}

func (r *memLoanRepo) ListOpenDueBefore(ctx context.Context, deadline time.Time) ([]*models.Loan, error) {
	var result []*models.Loan
	for _, loan := range r.sorted() {
		if loan.ReturnDate == nil && !loan.DueDate.After(deadline) {
			result = append(result, loan)
		}
	}
	return result, nil
}

func (r *memLoanRepo) sorted() []*models.Loan {
	result := make([]*models.Loan, 0, len(r.loans))
	for id := uint(1); id < r.nextID; id++ {
		if loan, ok := r.loans[id]; ok {
			copied := loan
			result = append(result, &copied)
		}
	}
	return result
}

// memRequestRepo is an in-memory RequestRepository.
type memRequestRepo struct {
	requests map[uint]models.BookRequest
	nextID   uint
}

func newMemRequestRepo() *memRequestRepo {
	return &memRequestRepo{requests: make(map[uint]models.BookRequest), nextID: 1}
}

func (r *memRequestRepo) Create(ctx context.Context, request *models.BookRequest) error {
	request.ID = r.nextID
	r.nextID++
	r.requests[request.ID] = *request
	return nil
}

func (r *memRequestRepo) GetByID(ctx context.Context, id uint) (*models.BookRequest, error) {
	request, ok := r.requests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &request, nil
}

func (r *memRequestRepo) GetByIDForUpdate(ctx context.Context, id uint) (*models.BookRequest, error) {
	return r.GetByID(ctx, id)
}

func (r *memRequestRepo) Update(ctx context.Context, request *models.BookRequest) error {
	if _, ok := r.requests[request.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.requests[request.ID] = *request
	return nil
}

func (r *memRequestRepo) List(ctx context.Context, offset, limit int) ([]*models.BookRequest, int64, error) {
	all := r.sorted()
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *memRequestRepo) ListByRequester(ctx context.Context, requesterID uint) ([]*models.BookRequest, error) {
	var result []*models.BookRequest
	for _, request := range r.sorted() {
		if request.RequesterID == requesterID {
			result = append(result, request)
		}
	}
	return result, nil
}

func (r *memRequestRepo) sorted() []*models.BookRequest {
	result := make([]*models.BookRequest, 0, len(r.requests))
	for id := uint(1); id < r.nextID; id++ {
		if request, ok := r.requests[id]; ok {
			copied := request
			result = append(result, &copied)
		}
	}
	return result
}

// memTransactor restores both stores when the wrapped function fails, giving
// the tests real all-or-nothing semantics. A nested call joins the open
// transaction rather than snapshotting again.
type memTransactor struct {
	loans    *memLoanRepo
	requests *memRequestRepo
	depth    int
}

func newMemTransactor(loans *memLoanRepo, requests *memRequestRepo) *memTransactor {
	return &memTransactor{loans: loans, requests: requests}
}

func (t *memTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if t.depth > 0 {
		t.depth++
		defer func() { t.depth-- }()
		return fn(ctx)
	}

	loanSnapshot := make(map[uint]models.Loan, len(t.loans.loans))
	for id, loan := range t.loans.loans {
		loanSnapshot[id] = loan
	}
	loanNextID := t.loans.nextID

	requestSnapshot := make(map[uint]models.BookRequest, len(t.requests.requests))
	for id, request := range t.requests.requests {
		requestSnapshot[id] = request
	}
	requestNextID := t.requests.nextID

	t.depth++
	err := fn(ctx)
	t.depth--

	if err != nil {
		t.loans.loans = loanSnapshot
		t.loans.nextID = loanNextID
		t.requests.requests = requestSnapshot
		t.requests.nextID = requestNextID
	}
	return err
}

// fixture bundles one fully wired service graph over in-memory stores.
type fixture struct {
	directory  *stubDirectory
	loanRepo   *memLoanRepo
	reqRepo    *memRequestRepo
	cache      *cache.Store
	loans      *LoanService
	requests   *RequestService
	transactor *memTransactor
}

func newFixture() *fixture {
	directory := newStubDirectory()
	loanRepo := newMemLoanRepo()
	reqRepo := newMemRequestRepo()
	transactor := newMemTransactor(loanRepo, reqRepo)
	cacheStore := cache.New(10 * time.Minute)

	validator := NewValidator(directory)
	enricher := NewEnricher(directory, cacheStore)
	loans := NewLoanService(loanRepo, transactor, validator, enricher, cacheStore)
	requests := NewRequestService(reqRepo, transactor, loans, validator, directory, enricher, cacheStore)

	return &fixture{
		directory:  directory,
		loanRepo:   loanRepo,
		reqRepo:    reqRepo,
		cache:      cacheStore,
		loans:      loans,
		requests:   requests,
		transactor: transactor,
	}
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/andy/invoicedesk/internal/billing"
	"github.com/andy/invoicedesk/internal/domain"
	"github.com/andy/invoicedesk/internal/repository"
)

var (
	ErrItemNotFound = errors.New("invoice item not found")
)

// InvoiceSettings are the authoring defaults from config
type InvoiceSettings struct {
	NumberPrefix   string
	NumberWidth    int
	TaxRate        decimal.Decimal
	DefaultDueDays int
}

// ItemInput describes a line item to add or replace
type ItemInput struct {
	Description string
	Quantity    float64
	UnitPrice   float64
	Unit        string
	ProductID   string
}

// CreateInvoiceInput describes a new invoice. Either CustomerID or Client must be set.
type CreateInvoiceInput struct {
	// Number overrides the allocated number when set
	Number     string
	CustomerID string
	Client     domain.Party
	IssueDate  time.Time
	DueDate    *time.Time
	Items      []ItemInput
	Notes      string
}

// InvoiceUpdate changes invoice header fields. Nil fields are left as they are.
type InvoiceUpdate struct {
	Number    *string
	Client    *domain.Party
	IssueDate *time.Time
	DueDate   *time.Time
	// ClearDueDate removes the due date; DueDate is ignored when set
	ClearDueDate bool
}

// InvoiceFilter narrows List results. Zero values match everything.
type InvoiceFilter struct {
	Status *domain.InvoiceStatus
	Client string // case-insensitive substring of the client name
}

// InvoiceService manages the invoice lifecycle and keeps totals derived from items
type InvoiceService interface {
	// NextNumber returns the number the next created invoice would receive
	NextNumber(ctx context.Context) (string, error)

	Create(ctx context.Context, in CreateInvoiceInput) (*domain.Invoice, error)
	Get(ctx context.Context, id string) (*domain.Invoice, error)

	// Resolve finds an invoice by id or by number
	Resolve(ctx context.Context, ref string) (*domain.Invoice, error)
	List(ctx context.Context, filter InvoiceFilter) ([]*domain.Invoice, error)

	// Update edits the header: number, client and dates
	Update(ctx context.Context, invoiceID string, in InvoiceUpdate) (*domain.Invoice, error)

	AddItem(ctx context.Context, invoiceID string, in ItemInput) (*domain.Invoice, error)
	UpdateItem(ctx context.Context, invoiceID string, itemID int, in ItemInput) (*domain.Invoice, error)
	RemoveItem(ctx context.Context, invoiceID string, itemID int) (*domain.Invoice, error)

	SetNotes(ctx context.Context, invoiceID, notes string) (*domain.Invoice, error)
	SetStatus(ctx context.Context, invoiceID string, status domain.InvoiceStatus, force bool) (*domain.Invoice, error)
	Delete(ctx context.Context, invoiceID string) error
}

type invoiceService struct {
	invoiceRepo  repository.InvoiceRepository
	customerRepo repository.CustomerRepository
	productRepo  repository.ProductRepository
	companyRepo  repository.CompanyRepository
	settings     InvoiceSettings
	logger       *zap.Logger
	now          func() time.Time
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	customerRepo repository.CustomerRepository,
	productRepo repository.ProductRepository,
	companyRepo repository.CompanyRepository,
	settings InvoiceSettings,
	logger *zap.Logger,
) InvoiceService {
	if settings.NumberWidth <= 0 {
		settings.NumberWidth = billing.DefaultNumberWidth
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &invoiceService{
		invoiceRepo:  invoiceRepo,
		customerRepo: customerRepo,
		productRepo:  productRepo,
		companyRepo:  companyRepo,
		settings:     settings,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *invoiceService) NextNumber(ctx context.Context) (string, error) {
	invoices, err := s.invoiceRepo.List(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list invoices: %w", err)
	}

	numbers := make([]string, 0, len(invoices))
	for _, inv := range invoices {
		numbers = append(numbers, inv.Number)
	}
	return billing.NextNumber(s.settings.NumberPrefix, s.settings.NumberWidth, numbers), nil
}

func (s *invoiceService) Create(ctx context.Context, in CreateInvoiceInput) (*domain.Invoice, error) {
	number := strings.TrimSpace(in.Number)
	if number == "" {
		next, err := s.NextNumber(ctx)
		if err != nil {
			return nil, err
		}
		number = next
	} else if _, err := s.invoiceRepo.GetByNumber(ctx, number); err == nil {
		return nil, fmt.Errorf("%w: %s", repository.ErrDuplicateNumber, number)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	// items are checked before any reference data is saved
	items := make([]domain.LineItem, 0, len(in.Items))
	for i, item := range in.Items {
		li := toLineItem(i+1, item)
		if err := li.Validate(); err != nil {
			return nil, fmt.Errorf("item %d: %w", li.ID, err)
		}
		items = append(items, li)
	}
	if len(items) == 0 {
		return nil, &domain.ValidationError{Field: "items", Message: "at least one item is required"}
	}

	client, newCustomer, err := s.resolveClient(ctx, in)
	if err != nil {
		return nil, err
	}

	company, err := s.companyRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load company profile: %w", err)
	}

	issue := in.IssueDate
	if issue.IsZero() {
		issue = s.now()
	}
	issue = truncateDay(issue)

	inv := domain.NewInvoice(uuid.NewString(), number, client, company.AsSeller(), issue)
	inv.Items = items
	inv.Notes = in.Notes
	inv.DueDate = in.DueDate
	if inv.DueDate == nil && s.settings.DefaultDueDays > 0 {
		due := issue.AddDate(0, 0, s.settings.DefaultDueDays)
		inv.DueDate = &due
	}

	billing.Recalculate(inv, s.settings.TaxRate)
	if err := inv.Validate(); err != nil {
		return nil, err
	}

	newProducts, err := s.linkProducts(ctx, inv)
	if err != nil {
		return nil, err
	}

	// reference data is only written once the invoice itself is known to be valid
	rollback, err := s.saveReferenceData(ctx, newCustomer, newProducts)
	if err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Create(ctx, inv); err != nil {
		rollback()
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}

	s.logger.Info("invoice created",
		zap.String("id", inv.ID),
		zap.String("number", inv.Number),
		zap.Float64("total", inv.Total),
	)
	return inv, nil
}

// resolveClient returns the denormalized client. A client that matches no
// saved customer is returned as a new, unsaved customer as well.
func (s *invoiceService) resolveClient(ctx context.Context, in CreateInvoiceInput) (domain.Party, *domain.Customer, error) {
	if in.CustomerID != "" {
		c, err := s.customerRepo.GetByID(ctx, in.CustomerID)
		if err != nil {
			return domain.Party{}, nil, fmt.Errorf("failed to load customer: %w", err)
		}
		return c.AsParty(), nil, nil
	}

	party := in.Client
	if strings.TrimSpace(party.Name) == "" {
		return domain.Party{}, nil, &domain.ValidationError{Field: "client.name", Message: "client name is required"}
	}

	customers, err := s.customerRepo.List(ctx)
	if err != nil {
		return domain.Party{}, nil, fmt.Errorf("failed to list customers: %w", err)
	}
	for _, c := range customers {
		if strings.EqualFold(c.Name, party.Name) && strings.EqualFold(c.Email, party.Email) {
			party.CustomerID = c.ID
			return party, nil, nil
		}
	}

	c := &domain.Customer{
		ID:        uuid.NewString(),
		Name:      party.Name,
		Address:   party.Address,
		Email:     party.Email,
		Phone:     party.Phone,
		TRN:       party.TRN,
		CreatedAt: s.now(),
	}
	party.CustomerID = c.ID
	return party, c, nil
}

// linkProducts links items to existing products by name and price. Items with
// no match get a new product id; those products are returned unsaved.
func (s *invoiceService) linkProducts(ctx context.Context, inv *domain.Invoice) ([]*domain.Product, error) {
	products, err := s.productRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	var created []*domain.Product
	for i := range inv.Items {
		item := &inv.Items[i]
		if item.ProductID != "" {
			continue
		}

		var match *domain.Product
		for _, p := range products {
			if strings.EqualFold(p.Name, item.Description) && p.Price == item.UnitPrice {
				match = p
				break
			}
		}
		if match == nil {
			match = &domain.Product{
				ID:        uuid.NewString(),
				Name:      item.Description,
				Price:     item.UnitPrice,
				Unit:      item.Unit,
				CreatedAt: s.now(),
			}
			products = append(products, match)
			created = append(created, match)
		}
		item.ProductID = match.ID
	}
	return created, nil
}

// saveReferenceData persists a new customer and products. On error anything
// already written is removed again; the returned rollback does the same for a
// later failure.
func (s *invoiceService) saveReferenceData(ctx context.Context, customer *domain.Customer, products []*domain.Product) (func(), error) {
	var undo []func()
	rollback := func() {
		for i := len(undo) - 1; i >= 0; i-- {
			undo[i]()
		}
	}

	if customer != nil {
		if err := s.customerRepo.Create(ctx, customer); err != nil {
			return nil, fmt.Errorf("failed to save customer: %w", err)
		}
		s.logger.Debug("customer saved from invoice", zap.String("customer", customer.ID), zap.String("name", customer.Name))
		undo = append(undo, func() {
			if err := s.customerRepo.Delete(ctx, customer.ID); err != nil {
				s.logger.Warn("failed to remove customer", zap.String("customer", customer.ID), zap.Error(err))
			}
		})
	}

	for _, p := range products {
		if err := s.productRepo.Create(ctx, p); err != nil {
			rollback()
			return nil, fmt.Errorf("failed to save product: %w", err)
		}
		undo = append(undo, func() {
			if err := s.productRepo.Delete(ctx, p.ID); err != nil {
				s.logger.Warn("failed to remove product", zap.String("product", p.ID), zap.Error(err))
			}
		})
	}
	return rollback, nil
}

func (s *invoiceService) Get(ctx context.Context, id string) (*domain.Invoice, error) {
	return s.invoiceRepo.GetByID(ctx, id)
}

func (s *invoiceService) Resolve(ctx context.Context, ref string) (*domain.Invoice, error) {
	inv, err := s.invoiceRepo.GetByID(ctx, ref)
	if err == nil {
		return inv, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	return s.invoiceRepo.GetByNumber(ctx, ref)
}

func (s *invoiceService) List(ctx context.Context, filter InvoiceFilter) ([]*domain.Invoice, error) {
	invoices, err := s.invoiceRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}

	client := strings.ToLower(strings.TrimSpace(filter.Client))
	out := invoices[:0]
	for _, inv := range invoices {
		if filter.Status != nil && inv.Status != *filter.Status {
			continue
		}
		if client != "" && !strings.Contains(strings.ToLower(inv.Client.Name), client) {
			continue
		}
		out = append(out, inv)
	}
	return out, nil
}

func (s *invoiceService) Update(ctx context.Context, invoiceID string, in InvoiceUpdate) (*domain.Invoice, error) {
	inv, err := s.modify(ctx, invoiceID, func(inv *domain.Invoice) error {
		if in.Number != nil {
			number := strings.TrimSpace(*in.Number)
			if number != inv.Number {
				if existing, err := s.invoiceRepo.GetByNumber(ctx, number); err == nil && existing.ID != inv.ID {
					return fmt.Errorf("%w: %s", repository.ErrDuplicateNumber, number)
				} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
					return err
				}
			}
			inv.Number = number
		}
		if in.Client != nil {
			inv.Client = *in.Client
		}
		if in.IssueDate != nil {
			inv.IssueDate = truncateDay(*in.IssueDate)
		}
		switch {
		case in.ClearDueDate:
			inv.DueDate = nil
		case in.DueDate != nil:
			due := truncateDay(*in.DueDate)
			inv.DueDate = &due
		}
		return inv.Validate()
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("invoice updated", zap.String("id", inv.ID), zap.String("number", inv.Number))
	return inv, nil
}

func (s *invoiceService) AddItem(ctx context.Context, invoiceID string, in ItemInput) (*domain.Invoice, error) {
	return s.modify(ctx, invoiceID, func(inv *domain.Invoice) error {
		li := toLineItem(inv.NextItemID(), in)
		if err := li.Validate(); err != nil {
			return err
		}
		inv.Items = append(inv.Items, li)
		return nil
	})
}

func (s *invoiceService) UpdateItem(ctx context.Context, invoiceID string, itemID int, in ItemInput) (*domain.Invoice, error) {
	return s.modify(ctx, invoiceID, func(inv *domain.Invoice) error {
		for i := range inv.Items {
			if inv.Items[i].ID != itemID {
				continue
			}
			li := toLineItem(itemID, in)
			if err := li.Validate(); err != nil {
				return err
			}
			inv.Items[i] = li
			return nil
		}
		return fmt.Errorf("%w: %d", ErrItemNotFound, itemID)
	})
}

func (s *invoiceService) RemoveItem(ctx context.Context, invoiceID string, itemID int) (*domain.Invoice, error) {
	return s.modify(ctx, invoiceID, func(inv *domain.Invoice) error {
		for i := range inv.Items {
			if inv.Items[i].ID == itemID {
				inv.Items = append(inv.Items[:i], inv.Items[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("%w: %d", ErrItemNotFound, itemID)
	})
}

func (s *invoiceService) SetNotes(ctx context.Context, invoiceID, notes string) (*domain.Invoice, error) {
	return s.modify(ctx, invoiceID, func(inv *domain.Invoice) error {
		inv.Notes = notes
		return nil
	})
}

func (s *invoiceService) SetStatus(ctx context.Context, invoiceID string, status domain.InvoiceStatus, force bool) (*domain.Invoice, error) {
	inv, err := s.modify(ctx, invoiceID, func(inv *domain.Invoice) error {
		return inv.Transition(status, force)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("invoice status changed", zap.String("number", inv.Number), zap.String("status", string(status)))
	return inv, nil
}

func (s *invoiceService) Delete(ctx context.Context, invoiceID string) error {
	if err := s.invoiceRepo.Delete(ctx, invoiceID); err != nil {
		return err
	}
	s.logger.Info("invoice deleted", zap.String("id", invoiceID))
	return nil
}

// modify loads the invoice, applies fn, re-derives totals and persists
func (s *invoiceService) modify(ctx context.Context, invoiceID string, fn func(*domain.Invoice) error) (*domain.Invoice, error) {
	inv, err := s.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	if err := fn(inv); err != nil {
		return nil, err
	}

	billing.Recalculate(inv, s.settings.TaxRate)
	if err := s.invoiceRepo.Update(ctx, inv); err != nil {
		return nil, fmt.Errorf("failed to update invoice: %w", err)
	}
	return inv, nil
}

func toLineItem(id int, in ItemInput) domain.LineItem {
	return domain.LineItem{
		ID:          id,
		Description: strings.TrimSpace(in.Description),
		Quantity:    in.Quantity,
		UnitPrice:   in.UnitPrice,
		Unit:        in.Unit,
		ProductID:   in.ProductID,
	}
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

package service

import (
	"context"
	"github.com/Miraines/MoonyAndStarry/contacts-service/internal/adapters/transport/http/dto"
	customErrors "github.com/Miraines/MoonyAndStarry/contacts-service/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/contacts-service/internal/domain/auth/model"
	repo "github.com/Miraines/MoonyAndStarry/contacts-service/internal/domain/auth/repo"
	"github.com/Miraines/MoonyAndStarry/contacts-service/internal/infra/clock"
	"github.com/go-playground/validator/v10"
	"time"
)

const (
	MsgContactNotFound  = "NOT FOUND"
	MsgContactsNotFound = "Contacts not found"
	MsgContactExists    = "Contact with this email already exists"

	// CongratulationLayout renders dates as DD.MM.YYYY.
	CongratulationLayout = "02.01.2006"
)

type Service interface {
	List(ctx context.Context, user model.User, in dto.ListContactsDTO) ([]model.Contact, error)
	Get(ctx context.Context, user model.User, id uint) (model.Contact, error)
	Create(ctx context.Context, user model.User, in dto.ContactDTO) (model.Contact, error)
	Update(ctx context.Context, user model.User, id uint, in dto.ContactDTO) (model.Contact, error)
	Delete(ctx context.Context, user model.User, id uint) (model.Contact, error)
	Search(ctx context.Context, user model.User, in dto.SearchContactsDTO) ([]model.Contact, error)
	UpcomingBirthdays(ctx context.Context, user model.User, in dto.BirthdaysDTO) ([]model.UpcomingBirthday, error)
}

type contactService struct {
	contacts repo.ContactRepo
	v        *validator.Validate
	clock    clock.Clock
}

func New(contacts repo.ContactRepo, v *validator.Validate, clk clock.Clock) Service {
	if v == nil {
		v = dto.NewValidator()
	}
	if clk == nil {
		clk = clock.System
	}
	return &contactService{contacts: contacts, v: v, clock: clk}
}

func (s *contactService) validate(in dto.ContactDTO) error {
	if err := s.v.Struct(in); err != nil {
		return customErrors.NewInvalidArgument(err.Error())
	}
	if in.Birthday.IsZero() {
		return customErrors.NewInvalidArgument("birthday is required")
	}
	return nil
}

func (s *contactService) List(ctx context.Context, user model.User, in dto.ListContactsDTO) ([]model.Contact, error) {
	if err := s.v.Struct(in); err != nil {
		return nil, customErrors.NewInvalidArgument(err.Error())
	}
	return s.contacts.List(ctx, user.ID, in.Limit, in.Offset)
}

func (s *contactService) Get(ctx context.Context, user model.User, id uint) (model.Contact, error) {
	if id < 1 {
		return model.Contact{}, customErrors.NewInvalidArgument("contact id must be >= 1")
	}
	c, err := s.contacts.Get(ctx, user.ID, id)
	return c, notFound(err, MsgContactNotFound)
}

func (s *contactService) Create(ctx context.Context, user model.User, in dto.ContactDTO) (model.Contact, error) {
	if err := s.validate(in); err != nil {
		return model.Contact{}, err
	}
	c := fromDTO(in)
	c.UserID = user.ID
	now := s.clock.Now()
	c.CreatedAt, c.UpdatedAt = now, now
	created, err := s.contacts.Create(ctx, c)
	return created, duplicate(err)
}

func (s *contactService) Update(ctx context.Context, user model.User, id uint, in dto.ContactDTO) (model.Contact, error) {
	if id < 1 {
		return model.Contact{}, customErrors.NewInvalidArgument("contact id must be >= 1")
	}
	if err := s.validate(in); err != nil {
		return model.Contact{}, err
	}
	c := fromDTO(in)
	c.UpdatedAt = s.clock.Now()
	updated, err := s.contacts.Update(ctx, user.ID, id, c)
	return updated, duplicate(notFound(err, MsgContactNotFound))
}

func (s *contactService) Delete(ctx context.Context, user model.User, id uint) (model.Contact, error) {
	if id < 1 {
		return model.Contact{}, customErrors.NewInvalidArgument("contact id must be >= 1")
	}
	c, err := s.contacts.Delete(ctx, user.ID, id)
	return c, notFound(err, MsgContactNotFound)
}

func (s *contactService) Search(ctx context.Context, user model.User, in dto.SearchContactsDTO) ([]model.Contact, error) {
	if err := s.v.Struct(in); err != nil {
		return nil, customErrors.NewInvalidArgument(err.Error())
	}
	found, err := s.contacts.Search(ctx, user.ID, model.ContactFilter{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
	})
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, customErrors.NewNotFound(MsgContactsNotFound)
	}
	return found, nil
}

func (s *contactService) UpcomingBirthdays(ctx context.Context, user model.User, in dto.BirthdaysDTO) ([]model.UpcomingBirthday, error) {
	if err := s.v.Struct(in); err != nil {
		return nil, customErrors.NewInvalidArgument(err.Error())
	}
	all, err := s.contacts.All(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	out := make([]model.UpcomingBirthday, 0)
	for _, c := range all {
		next := NextBirthday(c.Birthday, today)
		if daysBetween(today, next) > in.Days {
			continue
		}
		out = append(out, model.UpcomingBirthday{
			ContactID:          c.ID,
			FirstName:          c.FirstName,
			LastName:           c.LastName,
			CongratulationDate: CongratulationDay(next).Format(CongratulationLayout),
		})
	}
	return out, nil
}

// NextBirthday returns the first anniversary of birthday on or after today.
// Feb 29 falls on Mar 1 in non-leap years.
func NextBirthday(birthday model.Date, today time.Time) time.Time {
	next := time.Date(today.Year(), birthday.Month(), birthday.Day(), 0, 0, 0, 0, time.UTC)
	if next.Before(today) {
		next = time.Date(today.Year()+1, birthday.Month(), birthday.Day(), 0, 0, 0, 0, time.UTC)
	}
	return next
}

// CongratulationDay moves Saturday and Sunday to the following Monday.
func CongratulationDay(d time.Time) time.Time {
	switch d.Weekday() {
	case time.Saturday:
		return d.AddDate(0, 0, 2)
	case time.Sunday:
		return d.AddDate(0, 0, 1)
	}
	return d
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

func fromDTO(in dto.ContactDTO) model.Contact {
	return model.Contact{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Phone:     in.Phone,
		Birthday:  in.Birthday,
		DataAdd:   in.DataAdd,
	}
}

func notFound(err error, detail string) error {
	if customErrors.IsNotFound(err) {
		return customErrors.NewNotFound(detail)
	}
	return err
}

func duplicate(err error) error {
	if customErrors.IsAlreadyExists(err) {
		return customErrors.WithDetail(customErrors.ErrAlreadyExists, MsgContactExists)
	}
	return err
}

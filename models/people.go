package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/wchd/budget_backend/config"
	"github.com/wchd/budget_backend/utils"
	"gorm.io/gorm"
)

// People are the vendors and customers a posting is paid to or received from.
type People struct {
	ID             int       `gorm:"primary_key" json:"id"`
	Name           string    `gorm:"size:255;not null;index" json:"name"`
	Address        string    `gorm:"size:255" json:"address"`
	City           string    `gorm:"size:100" json:"city"`
	State          string    `gorm:"size:2" json:"state"`
	ZipCode        string    `gorm:"size:10" json:"zip_code"`
	Phone          string    `gorm:"size:20" json:"phone"`
	Email          string    `gorm:"size:100" json:"email"`
	PrimaryContact string    `gorm:"size:255" json:"primary_contact"`
	Ein            string    `gorm:"size:10" json:"ein"`
	AccountNumber  string    `gorm:"size:50" json:"account_number"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (People) TableName() string {
	return "people"
}

type NewPeople struct {
	Name           string `json:"name" validate:"required,max=255"`
	Address        string `json:"address" validate:"max=255"`
	City           string `json:"city" validate:"max=100"`
	State          string `json:"state" validate:"omitempty,len=2"`
	ZipCode        string `json:"zip_code" validate:"max=10"`
	Phone          string `json:"phone" validate:"max=20"`
	Email          string `json:"email" validate:"max=100"`
	PrimaryContact string `json:"primary_contact" validate:"max=255"`
	Ein            string `json:"ein" validate:"max=10"`
	AccountNumber  string `json:"account_number" validate:"max=50"`
}

func (input *NewPeople) validate() error {
	if err := utils.ValidateInput(input); err != nil {
		return err
	}
	if input.Phone != "" {
		if err := utils.ValidatePhoneNumber(input.Phone, utils.CountryCode); err != nil {
			return utils.NewValidationError("phone", err.Error())
		}
	}
	if input.Email != "" && !utils.IsValidEmail(input.Email) {
		return utils.NewValidationError("email", "invalid email")
	}
	return nil
}

func (input *NewPeople) apply(p *People) {
	p.Name = input.Name
	p.Address = input.Address
	p.City = input.City
	p.State = input.State
	p.ZipCode = input.ZipCode
	p.Phone = input.Phone
	p.Email = input.Email
	p.PrimaryContact = input.PrimaryContact
	p.Ein = input.Ein
	p.AccountNumber = input.AccountNumber
}

func CreatePeople(ctx context.Context, input *NewPeople) (*People, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	var people People
	input.apply(&people)
	if err := config.GetDB().WithContext(ctx).Create(&people).Error; err != nil {
		return nil, err
	}
	return &people, nil
}

func UpdatePeople(ctx context.Context, id int, input *NewPeople) (*People, error) {
	people, err := utils.FetchModel[People](ctx, id)
	if err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}
	input.apply(people)
	if err := config.GetDB().WithContext(ctx).Save(people).Error; err != nil {
		return nil, err
	}
	return people, nil
}

func DeletePeople(ctx context.Context, id int) (*People, error) {
	people, err := utils.FetchModel[People](ctx, id)
	if err != nil {
		return nil, err
	}
	for _, check := range []func() (int64, error){
		func() (int64, error) { return utils.ResourceCountWhere[Expense](ctx, "people_id = ?", id) },
		func() (int64, error) { return utils.ResourceCountWhere[Revenue](ctx, "people_id = ?", id) },
	} {
		count, err := check()
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, utils.NewValidationError("id", "people has postings")
		}
	}
	if err := config.GetDB().WithContext(ctx).Delete(people).Error; err != nil {
		return nil, err
	}
	return people, nil
}

func GetPeople(ctx context.Context, id int) (*People, error) {
	return utils.FetchModel[People](ctx, id)
}

func ListPeople(ctx context.Context) ([]*People, error) {
	return utils.FetchAllModels[People](ctx)
}

// FindPeopleByName resolves a payee by exact name inside tx.
func FindPeopleByName(tx *gorm.DB, name string) (*People, error) {
	var people People
	err := tx.Where("name = ?", strings.TrimSpace(name)).First(&people).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewIntegrityError("people", "people", name, "no people record with this name")
		}
		return nil, err
	}
	return &people, nil
}

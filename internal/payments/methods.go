package payments

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/Keoroanthony/go-storefront/internal/models"
	"github.com/Keoroanthony/go-storefront/internal/utils"
)

var ErrMethodNotFound = errors.New("payment method not found")

type MethodForm struct {
	Name          string                   `form:"name" json:"name" binding:"required,max=120"`
	MethodType    models.PaymentMethodType `form:"method_type" json:"method_type" binding:"required"`
	UPIID         string                   `form:"upi_id" json:"upi_id" binding:"max=120"`
	AccountName   string                   `form:"account_name" json:"account_name" binding:"max=120"`
	AccountNumber string                   `form:"account_number" json:"account_number" binding:"max=50"`
	IFSCCode      string                   `form:"ifsc_code" json:"ifsc_code" binding:"max=20"`
	BankName      string                   `form:"bank_name" json:"bank_name" binding:"max=120"`
	Instructions  string                   `form:"instructions" json:"instructions"`
	IsActive      bool                     `form:"is_active" json:"is_active"`
	SortOrder     uint                     `form:"sort_order" json:"sort_order"`
	QRImage       string                   `form:"-" json:"-"`
}

type MethodUpdate struct {
	IsActive  *bool `json:"is_active"`
	SortOrder *uint `json:"sort_order"`
}

func (s *Service) ListMethods(ctx context.Context, activeOnly bool) ([]models.PaymentMethod, error) {
	q := s.DB.WithContext(ctx)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var methods []models.PaymentMethod
	err := q.Order("sort_order, name").Find(&methods).Error
	return methods, err
}

func (s *Service) CreateMethod(ctx context.Context, form MethodForm) (models.PaymentMethod, error) {
	form.Name = strings.TrimSpace(form.Name)
	form.MethodType = models.PaymentMethodType(strings.ToUpper(string(form.MethodType)))

	verr := utils.Validate(form)
	if form.MethodType != "" && !form.MethodType.Valid() {
		verr.Add("method_type", "Select a valid choice.")
	}
	if err := verr.OrNil(); err != nil {
		return models.PaymentMethod{}, err
	}

	method := models.PaymentMethod{
		Name:          form.Name,
		MethodType:    form.MethodType,
		UPIID:         strings.TrimSpace(form.UPIID),
		AccountName:   form.AccountName,
		AccountNumber: strings.TrimSpace(form.AccountNumber),
		IFSCCode:      strings.ToUpper(strings.TrimSpace(form.IFSCCode)),
		BankName:      form.BankName,
		QRImage:       form.QRImage,
		Instructions:  form.Instructions,
		IsActive:      form.IsActive,
		SortOrder:     form.SortOrder,
	}
	err := s.DB.WithContext(ctx).Create(&method).Error
	return method, err
}

func (s *Service) UpdateMethod(ctx context.Context, id uint, update MethodUpdate) (models.PaymentMethod, error) {
	var method models.PaymentMethod
	err := s.DB.WithContext(ctx).First(&method, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return method, ErrMethodNotFound
	}
	if err != nil {
		return method, err
	}

	changes := map[string]any{}
	if update.IsActive != nil {
		changes["is_active"] = *update.IsActive
	}
	if update.SortOrder != nil {
		changes["sort_order"] = *update.SortOrder
	}
	if len(changes) == 0 {
		return method, nil
	}
	if err := s.DB.WithContext(ctx).Model(&method).Updates(changes).Error; err != nil {
		return method, err
	}
	return method, s.DB.WithContext(ctx).First(&method, id).Error
}

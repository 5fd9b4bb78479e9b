package auth

import (
	"context"
	"log/slog"
	"reflect"
	"sort"
	"strings"
	"unicode"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/google/uuid"

	"github.com/mcoot/schoolgate/internal/model"
)

// custom validation tags
const (
	notBlankTag = "notblank"
	phoneTag    = "phone"
	roleTag     = "role"
)

// Registration is a new-account request. Phone may carry any formatting;
// only its digits are kept.
type Registration struct {
	Username        string     `json:"username" validate:"notblank,max=64"`
	Password        string     `json:"password" validate:"notblank"`
	ConfirmPassword string     `json:"confirm_password" validate:"eqfield=Password"`
	FullName        string     `json:"full_name" validate:"notblank,max=200"`
	Phone           string     `json:"phone" validate:"omitempty,phone"`
	Email           string     `json:"email" validate:"omitempty,email"`
	Role            model.Role `json:"role" validate:"role"`
}

// ValidationError carries per-field messages keyed by JSON field name
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	sort.Strings(parts)
	return "invalid account: " + strings.Join(parts, "; ")
}

// registrationValidator wraps a validator with english messages
type registrationValidator struct {
	validate   *validator.Validate
	translator ut.Translator
}

func newRegistrationValidator() *registrationValidator {
	v := validator.New()

	// Register the english error messages for validation errors.
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(v, translator)

	// Use JSON tag names for errors instead of Go struct names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation(notBlankTag, notBlankValidation)
	_ = v.RegisterValidation(phoneTag, phoneValidation)
	_ = v.RegisterValidation(roleTag, roleValidation)

	messages := map[string]string{
		notBlankTag: "this field is required",
		phoneTag:    "phone must have 10 to 15 digits",
		roleTag:     "role must be admin, teacher or student",
		"eqfield":   "passwords do not match",
	}
	for tag, msg := range messages {
		msg := msg
		_ = v.RegisterTranslation(tag, translator,
			func(ut.Translator) error { return nil },
			func(ut.Translator, validator.FieldError) string { return msg },
		)
	}

	return &registrationValidator{validate: v, translator: translator}
}

func (rv *registrationValidator) check(v any) error {
	err := rv.validate.Struct(v)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Translate(rv.translator)
	}
	return &ValidationError{Fields: fields}
}

// Custom Validators

func notBlankValidation(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func phoneValidation(fl validator.FieldLevel) bool {
	phone := fl.Field().String()
	if len(phone) < 10 || len(phone) > 15 {
		return false
	}
	for _, r := range phone {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func roleValidation(fl validator.FieldLevel) bool {
	return model.Role(fl.Field().String()).Valid()
}

// NormalizePhone keeps only the digits of a formatted number. A bare
// country code such as "+7 (___) ___-__-__" counts as no phone at all.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if unicode.IsDigit(r) && r < unicode.MaxASCII {
			b.WriteRune(r)
		}
	}
	if b.Len() <= 1 {
		return ""
	}
	return b.String()
}

func (r Registration) normalized() Registration {
	r.Username = strings.TrimSpace(r.Username)
	r.Password = strings.TrimSpace(r.Password)
	r.ConfirmPassword = strings.TrimSpace(r.ConfirmPassword)
	r.FullName = strings.TrimSpace(r.FullName)
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = NormalizePhone(r.Phone)
	if r.Role == "" {
		r.Role = model.RoleStudent
	}
	return r
}

// selfServiceRoles are the roles a registrant may pick for themselves
var selfServiceRoles = map[model.Role]bool{
	model.RoleTeacher: true,
	model.RoleStudent: true,
}

// Register validates and creates a new account from the open registration
// form. Admin accounts cannot be self-registered. The credential is stored in
// whatever form the configured matcher prepares.
func (c *Coordinator) Register(ctx context.Context, reg Registration) (*model.Account, error) {
	reg = reg.normalized()
	if err := c.validator.check(reg); err != nil {
		return nil, err
	}
	if !selfServiceRoles[reg.Role] {
		return nil, &ValidationError{Fields: map[string]string{"role": "role must be teacher or student"}}
	}
	return c.create(ctx, reg, "registration")
}

// Provision creates an account on an administrator's behalf. Any role may be
// assigned, admin included.
func (c *Coordinator) Provision(ctx context.Context, reg Registration) (*model.Account, error) {
	reg = reg.normalized()
	if err := c.validator.check(reg); err != nil {
		return nil, err
	}
	return c.create(ctx, reg, "admin")
}

func (c *Coordinator) create(ctx context.Context, reg Registration, source string) (*model.Account, error) {
	credential, err := c.matcher.Prepare(reg.Password)
	if err != nil {
		return nil, err
	}

	now := c.clock.Now()
	account := &model.Account{
		ID:         model.AccountID(uuid.NewString()),
		Username:   reg.Username,
		Credential: credential,
		FullName:   reg.FullName,
		Phone:      reg.Phone,
		Email:      reg.Email,
		Role:       reg.Role,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := c.store.CreateAccount(ctx, account); err != nil {
		return nil, c.storeErr("create account", err)
	}

	c.logger.Info("account registered",
		slog.String("account_id", string(account.ID)),
		slog.String("username", account.Username),
		slog.String("role", string(account.Role)),
		slog.String("source", source),
	)
	return account, nil
}

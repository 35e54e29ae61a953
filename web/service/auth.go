package service

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/testwork/bookadmin/database"
	"github.com/testwork/bookadmin/database/model"
	"github.com/testwork/bookadmin/logger"
	"github.com/testwork/bookadmin/util/crypto"
)

// demoIdentityId is the user that the session login always logs in.
const demoIdentityId = 1

type registration struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r registration) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.EmailFormat, validation.RuneLength(1, 255)),
		validation.Field(&r.Password, validation.Required, validation.RuneLength(6, 128)),
	)
}

// AuthService resolves and establishes identities for both login variants.
type AuthService struct {
	userService UserService
}

// GetIdentityUser loads the session user. A missing user or a stale
// uniquifier yields nil without error.
func (s *AuthService) GetIdentityUser(id int, token string) (*model.User, error) {
	user, err := s.userService.GetUser(id)
	if err == ErrRecordNotFound {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	if user.Uniquifier != token {
		return nil, nil
	}
	return user, nil
}

// LoginDemo returns identity #1 without checking any credential.
func (s *AuthService) LoginDemo() (*model.User, error) {
	user := &model.User{}
	err := database.GetDB().First(user, demoIdentityId).Error
	if database.IsNotFound(err) {
		return nil, ErrNoDemoIdentity
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// CheckUser verifies email and password for the credential login.
func (s *AuthService) CheckUser(email string, password string) (*model.User, error) {
	user, err := s.userService.GetUserByEmail(email)
	if err == ErrRecordNotFound {
		return nil, ErrInvalidCredentials
	} else if err != nil {
		logger.Warning("check user err:", err)
		return nil, err
	}
	if !crypto.CheckPasswordHash(user.Password, password) {
		return nil, ErrInvalidCredentials
	}
	if !user.Active {
		return nil, ErrAccountDisabled
	}
	return user, nil
}

// Register creates exactly one active user for an unused email.
func (s *AuthService) Register(email string, password string) (*model.User, error) {
	r := registration{Email: normalizeEmail(email), Password: password}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	taken, err := s.userService.HasUserEmail(r.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}
	hash, err := crypto.HashPasswordAsBcrypt(r.Password)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Email:    &r.Email,
		Password: hash,
		Active:   true,
	}
	err = database.GetDB().Create(user).Error
	if database.IsDuplicate(err) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, err
	}
	logger.Infof("registered user #%d <%s>", user.Id, r.Email)
	return user, nil
}

package service

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrNoDemoIdentity     = errors.New("demo identity #1 does not exist")
	ErrUnknownAuthor      = errors.New("author does not exist")
	ErrRecordNotFound     = errors.New("record not found")
)

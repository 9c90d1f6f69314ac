package service

import "errors"

var (
	// Ошибки бизнес-логики для обработки в handlers
	ErrNotAuthenticated     = errors.New("please log in first")
	ErrOwnReview            = errors.New("owners cannot review their own listing")
	ErrAlreadyReviewed      = errors.New("you have already reviewed this listing")
	ErrNoSelection          = errors.New("no listing selected")
	ErrInvalidCategory      = errors.New("unknown category")
	ErrInvalidViewMode      = errors.New("view mode must be list or map")
	ErrUnpairedCoordinates  = errors.New("latitude and longitude must be provided together")
	ErrConfirmationRequired = errors.New("deletion requires explicit confirmation")
)

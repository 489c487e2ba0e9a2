package product

import "errors"

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrDuplicateReview  = errors.New("product already reviewed by this user")
	ErrNoFieldsToUpdate = errors.New("no fields to update")
)

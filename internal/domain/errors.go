package domain

import "errors"

var (
	// ErrMalformedFragment is returned when an OCR fragment's bounding polygon
	// does not have the expected number of corner points
	ErrMalformedFragment = errors.New("malformed OCR fragment polygon")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrItemNotFound is returned when a catalog item cannot be found
	ErrItemNotFound = errors.New("inventory item not found")

	// ErrReceiptNotFound is returned when a receipt cannot be found
	ErrReceiptNotFound = errors.New("receipt not found")

	// ErrBillNotFound is returned when a bill cannot be found
	ErrBillNotFound = errors.New("bill not found")

	// ErrInsufficientStock is returned when a stock decrement would go below zero
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrInvalidPrice is returned when pricing fields fail business validation
	ErrInvalidPrice = errors.New("invalid price configuration")

	// ErrOCRUnavailable is returned when the OCR engine cannot be reached
	ErrOCRUnavailable = errors.New("OCR engine unavailable")

	// ErrUnsupportedFile is returned for uploads with an unsupported extension
	ErrUnsupportedFile = errors.New("unsupported file type")

	// ErrFileTooLarge is returned when an upload exceeds the size limit
	ErrFileTooLarge = errors.New("file too large")
)

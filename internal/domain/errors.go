package domain

import "errors"

var (
	// ErrSessionGraded is returned when a write hits a session that was already submitted.
	ErrSessionGraded = errors.New("quiz session already graded")
	// ErrPositionOutOfRange is returned for navigation outside the deck bounds.
	ErrPositionOutOfRange = errors.New("position out of range")
	// ErrQuestionNotFound indicates a question ID is not in the bank.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrInvalidQuestion indicates a question record violates its type's shape.
	ErrInvalidQuestion = errors.New("invalid question")
	// ErrUsernameTaken is returned when registering an existing username.
	ErrUsernameTaken = errors.New("username taken")
	// ErrInvalidCredentials is returned on a failed login.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidImport indicates an import payload is not a question array.
	ErrInvalidImport = errors.New("invalid import payload")
	// ErrAdminKeyRejected is returned when the admin gate key does not match.
	ErrAdminKeyRejected = errors.New("admin key rejected")
)

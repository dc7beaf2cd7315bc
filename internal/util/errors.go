package util

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSubjectNotFound    = errors.New("subject not found")
	ErrDuplicateSubject   = errors.New("subject already exists")
	ErrFieldNotAllowed    = errors.New("field is not allowed to be updated")
	ErrInvalidValue       = errors.New("invalid value")
	ErrGoalNotFound       = errors.New("goal not found")
	ErrTestNotFound       = errors.New("test record not found")
	ErrInvalidTestType    = errors.New("test type must be prelims or mains")
	ErrInvalidMood        = errors.New("invalid mood")
	ErrInvalidDate        = errors.New("date must be YYYY-MM-DD")
	ErrMoodNotFound       = errors.New("mood entry not found")
	ErrSectionNotFound    = errors.New("section not found")
	ErrSessionNotFound    = errors.New("study session not found")
	ErrSessionEnded       = errors.New("study session already ended")
	ErrAIUnavailable      = errors.New("ai provider unavailable")
	ErrInvalidAIResponse  = errors.New("invalid ai response")
)

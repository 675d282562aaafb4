package common

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinels_AreDistinct(t *testing.T) {
	all := []error{
		ErrorNotFound, ErrorConflict, ErrorBadRequest, ErrorInternal,
		ErrorUnauthorized, ErrorInvalidCredentials, ErrInvalidToken, ErrTokenExpired,
	}
	for i, a := range all {
		for j, b := range all {
			if i != j && errors.Is(a, b) {
				t.Fatalf("%v must not match %v", a, b)
			}
		}
	}
}

func TestSentinels_SurviveWrapping(t *testing.T) {
	err := fmt.Errorf("loading account: %w", ErrorNotFound)
	if !errors.Is(err, ErrorNotFound) {
		t.Fatalf("wrapped error lost its sentinel: %v", err)
	}
	if errors.Is(err, ErrorConflict) {
		t.Fatalf("wrapped not-found must not match conflict")
	}
}

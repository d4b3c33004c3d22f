package errors

import (
	"errors"
	"testing"
)

func TestErrorHelpers(t *testing.T) {
	err := NewInvalidArgument("bad")
	if !IsInvalidArgument(err) {
		t.Fatal("expected invalid argument")
	}

	wrapped := WrapInternal(err, "ctx")
	if !IsInternal(wrapped) {
		t.Fatal("expected internal")
	}
}

func TestCredentialError(t *testing.T) {
	err := NewInvalidCredentials("Invalid password")
	if !IsInvalidCredentials(err) {
		t.Fatal("expected invalid credentials")
	}

	var ce *CredentialError
	if !errors.As(err, &ce) || ce.Detail != "Invalid password" {
		t.Fatalf("unexpected detail: %v", err)
	}
}

func TestIsUnauthorized_Scope(t *testing.T) {
	if !IsUnauthorized(ErrInvalidScope) {
		t.Fatal("scope mismatch must count as unauthorized")
	}
	if IsUnauthorized(ErrTokenExpired) {
		t.Fatal("reset-token expiry is not an unauthorized error")
	}
}

func TestDetailError(t *testing.T) {
	err := NewNotFound("Contacts not found")
	if !IsNotFound(err) {
		t.Fatal("expected not found")
	}
	if err.Error() != "Contacts not found" {
		t.Fatalf("unexpected message %q", err.Error())
	}

	dup := WithDetail(ErrAlreadyExists, "Contact already exists")
	var de *DetailError
	if !IsAlreadyExists(dup) || !errors.As(dup, &de) || de.Detail != "Contact already exists" {
		t.Fatalf("unexpected detail error: %v", dup)
	}
}

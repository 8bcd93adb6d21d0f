package video

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestRoomToken(t *testing.T) {
	issuer := NewIssuer(Config{APIKey: "key-1", APISecret: "secret-1", TokenTTL: time.Hour})

	signed, err := issuer.RoomToken("aid-42", "uid-7")
	if err != nil {
		t.Fatalf("RoomToken: %v", err)
	}

	parsed, err := jwt.Parse(signed, func(token *jwt.Token) (interface{}, error) {
		return []byte("secret-1"), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		t.Fatal("token claims not valid")
	}
	if claims["room_id"] != "appointment_aid-42" {
		t.Errorf("room_id = %v, want appointment_aid-42", claims["room_id"])
	}
	if claims["user_id"] != "uid-7" {
		t.Errorf("user_id = %v, want uid-7", claims["user_id"])
	}
}

func TestRoomTokenWrongSecret(t *testing.T) {
	issuer := NewIssuer(Config{APIKey: "key-1", APISecret: "secret-1"})

	signed, err := issuer.RoomToken("aid-42", "uid-7")
	if err != nil {
		t.Fatalf("RoomToken: %v", err)
	}

	_, err = jwt.Parse(signed, func(token *jwt.Token) (interface{}, error) {
		return []byte("wrong"), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err == nil {
		t.Error("token verified under wrong secret")
	}
}

func TestRoomTokenRequiresIDs(t *testing.T) {
	issuer := NewIssuer(Config{APIKey: "key-1", APISecret: "secret-1"})

	if _, err := issuer.RoomToken("", "uid-7"); err == nil {
		t.Error("expected error for empty aid")
	}
	if _, err := issuer.RoomToken("aid-42", ""); err == nil {
		t.Error("expected error for empty user id")
	}
}

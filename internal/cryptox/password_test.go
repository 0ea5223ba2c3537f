package cryptox

import (
	"errors"
	"strings"
	"testing"
)

// cheap parameters keep the suite fast
var testParams = Params{Time: 1, Memory: 1024, Threads: 1, SaltLen: 16, KeyLen: 32}

func TestHashPassword_Format(t *testing.T) {
	h := HashPassword([]byte("secret-password"), testParams)

	if !strings.HasPrefix(h, "$argon2id$v=19$m=1024,t=1,p=1$") {
		t.Fatalf("unexpected PHC prefix: %s", h)
	}
	if strings.Contains(h, "secret-password") {
		t.Fatalf("hash must not contain the raw password")
	}
}

func TestHashPassword_SaltedPerCall(t *testing.T) {
	a := HashPassword([]byte("same"), testParams)
	b := HashPassword([]byte("same"), testParams)

	if a == b {
		t.Fatalf("expected different hashes for the same password, got %s twice", a)
	}
}

func TestVerifyPassword(t *testing.T) {
	h := HashPassword([]byte("right"), testParams)

	ok, err := VerifyPassword(h, []byte("right"))
	if err != nil || !ok {
		t.Fatalf("right password: ok=%v err=%v", ok, err)
	}

	ok, err = VerifyPassword(h, []byte("wrong"))
	if err != nil || ok {
		t.Fatalf("wrong password: ok=%v err=%v", ok, err)
	}
}

func TestVerifyPassword_DefaultParamsRoundTrip(t *testing.T) {
	h := HashPassword([]byte("pw"), DefaultParams)
	if !strings.Contains(h, "m=65536,t=1,p=4") {
		t.Fatalf("default params not encoded: %s", h)
	}
	ok, err := VerifyPassword(h, []byte("pw"))
	if err != nil || !ok {
		t.Fatalf("round trip failed: ok=%v err=%v", ok, err)
	}
}

func TestVerifyPassword_Malformed(t *testing.T) {
	cases := []string{
		"",
		"plain",
		"$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=18$m=1024,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=x,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=1024,t=1,p=1$!!$a2V5",
		"$argon2id$v=19$m=1024,t=1,p=1$c2FsdA$",
	}
	for _, c := range cases {
		if _, err := VerifyPassword(c, []byte("x")); !errors.Is(err, ErrMalformedHash) {
			t.Fatalf("VerifyPassword(%q) err = %v, want ErrMalformedHash", c, err)
		}
	}
}

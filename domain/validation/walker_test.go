package validation

import (
	"errors"
	"testing"

	"github.com/openshelf/openshelf/pkg/apperr"
)

func TestWalkHappyPath(t *testing.T) {
	schema := Schema{
		{Name: "email", Type: TypeEmail, Required: true},
		{Name: "password", Type: TypePassword, Required: true},
		{Name: "fullName", Type: TypePureName, Required: true},
		{Name: "phone", Type: TypePhone},
	}
	payload := map[string]any{
		"email":    "reader@openshelf.io",
		"password": "Sup3r$ecret",
		"fullName": "Ada Lovelace",
		"phone":    "+16502530000",
	}

	out, err := Walk(schema, payload)
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	if out["email"] != "reader@openshelf.io" {
		t.Errorf("email = %v", out["email"])
	}
	if out["phone"] != "+1-6502530000" {
		t.Errorf("phone = %v, want canonical form", out["phone"])
	}
}

func TestWalkRequiredMissing(t *testing.T) {
	schema := Schema{
		{Name: "email", Type: TypeEmail, Required: true},
		{Name: "password", Type: TypePassword, Required: true},
	}

	tests := []struct {
		name    string
		payload map[string]any
		wantMsg string
	}{
		{"absent", map[string]any{"password": "Sup3r$ecret"}, "email is required"},
		{"null counts as absent", map[string]any{"email": nil, "password": "Sup3r$ecret"}, "email is required"},
		{"second field missing", map[string]any{"email": "reader@openshelf.io"}, "password is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Walk(schema, tt.payload)
			if out != nil {
				t.Error("failed walk should return a nil map")
			}
			assertWalkError(t, err, 400, tt.wantMsg)
		})
	}
}

func TestWalkOptionalAbsentSkipped(t *testing.T) {
	schema := Schema{
		{Name: "phone", Type: TypePhone, Required: false},
		{Name: "bio", Type: TypeString, Required: false},
	}
	out, err := Walk(schema, map[string]any{})
	if err != nil {
		t.Fatalf("absent optional fields must not fail: %v", err)
	}
	if _, ok := out["phone"]; ok {
		t.Error("absent field should stay absent in the result")
	}
}

// An optional field that is present is still validated.
func TestWalkOptionalPresentValidated(t *testing.T) {
	schema := Schema{{Name: "phone", Type: TypePhone, Required: false}}
	_, err := Walk(schema, map[string]any{"phone": "12345"})
	assertWalkError(t, err, 400, "Enter a valid phone number with country code")
}

func TestWalkFailFastOrder(t *testing.T) {
	schema := Schema{
		{Name: "email", Type: TypeEmail, Required: true},
		{Name: "password", Type: TypePassword, Required: true},
	}
	// Both fields are invalid; only the first failure surfaces.
	_, err := Walk(schema, map[string]any{
		"email":    "not-an-email",
		"password": "weak",
	})
	assertWalkError(t, err, 400, "Invalid email")
}

func TestWalkDoesNotMutateInput(t *testing.T) {
	schema := Schema{{Name: "page", Type: TypeInteger}}
	payload := map[string]any{"page": "3", "extra": "kept"}

	out, err := Walk(schema, payload)
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	if payload["page"] != "3" {
		t.Errorf("input mutated: page = %v", payload["page"])
	}
	if out["page"] != int64(3) {
		t.Errorf("output not transformed: page = %v (%T)", out["page"], out["page"])
	}
	if out["extra"] != "kept" {
		t.Errorf("unvalidated key dropped: %v", out["extra"])
	}
}

func TestWalkNestedObject(t *testing.T) {
	schema := Schema{
		{Name: "address", Type: TypeObject, Required: true, Schema: Schema{
			{Name: "city", Type: TypeString, Required: true},
			{Name: "zip", Type: TypeInteger, Required: false},
		}},
	}

	t.Run("valid", func(t *testing.T) {
		out, err := Walk(schema, map[string]any{
			"address": map[string]any{"city": "Lagos", "zip": "10001"},
		})
		if err != nil {
			t.Fatalf("Walk() error = %v", err)
		}
		addr := out["address"].(map[string]any)
		if addr["zip"] != int64(10001) {
			t.Errorf("nested transform missing: zip = %v (%T)", addr["zip"], addr["zip"])
		}
	})

	t.Run("missing nested required", func(t *testing.T) {
		_, err := Walk(schema, map[string]any{
			"address": map[string]any{"zip": "10001"},
		})
		assertWalkError(t, err, 400, "city is required")
	})

	t.Run("not an object", func(t *testing.T) {
		_, err := Walk(schema, map[string]any{"address": "Lagos"})
		assertWalkError(t, err, 400, "Provide a valid object")
	})
}

func TestWalkArrayOfObjects(t *testing.T) {
	schema := Schema{
		{Name: "stops", Type: TypeArray, Required: true, ArrayType: TypeObject, Schema: Schema{
			{Name: "city", Type: TypeString, Required: true},
		}},
	}

	t.Run("valid", func(t *testing.T) {
		out, err := Walk(schema, map[string]any{
			"stops": []any{
				map[string]any{"city": "Lagos"},
				map[string]any{"city": "Accra"},
			},
		})
		if err != nil {
			t.Fatalf("Walk() error = %v", err)
		}
		stops := out["stops"].([]any)
		if len(stops) != 2 {
			t.Fatalf("len(stops) = %d", len(stops))
		}
	})

	t.Run("bad element surfaces nested message", func(t *testing.T) {
		_, err := Walk(schema, map[string]any{
			"stops": []any{
				map[string]any{"city": "Lagos"},
				map[string]any{"country": "Ghana"},
			},
		})
		assertWalkError(t, err, 400, "city is required")
	})

	t.Run("element not an object", func(t *testing.T) {
		_, err := Walk(schema, map[string]any{"stops": []any{"Lagos"}})
		assertWalkError(t, err, 400, "Provide a valid object")
	})
}

func TestWalkArrayOfPrimitives(t *testing.T) {
	schema := Schema{
		{Name: "categoryIds", Type: TypeArray, Required: true, ArrayType: TypeInteger},
	}

	t.Run("elements transformed", func(t *testing.T) {
		out, err := Walk(schema, map[string]any{
			"categoryIds": []any{float64(1), "2", 3},
		})
		if err != nil {
			t.Fatalf("Walk() error = %v", err)
		}
		ids := out["categoryIds"].([]any)
		for i, want := range []int64{1, 2, 3} {
			if ids[i] != want {
				t.Errorf("ids[%d] = %v (%T), want %d", i, ids[i], ids[i], want)
			}
		}
	})

	t.Run("bad element fails", func(t *testing.T) {
		_, err := Walk(schema, map[string]any{"categoryIds": []any{1, "two"}})
		assertWalkError(t, err, 400, "Provide a valid Integer value for categoryIds")
	})
}

func TestWalkCustom(t *testing.T) {
	isStatus := func(v any) (bool, error) {
		s, ok := v.(string)
		return ok && (s == "PENDING" || s == "COMPLETED" || s == "CANCELLED"), nil
	}

	t.Run("accepts", func(t *testing.T) {
		schema := Schema{{Name: "status", Type: TypeCustom, Required: true, Format: isStatus}}
		out, err := Walk(schema, map[string]any{"status": "PENDING"})
		if err != nil {
			t.Fatalf("Walk() error = %v", err)
		}
		if out["status"] != "PENDING" {
			t.Errorf("status = %v", out["status"])
		}
	})

	t.Run("default message", func(t *testing.T) {
		schema := Schema{{Name: "status", Type: TypeCustom, Required: true, Format: isStatus}}
		_, err := Walk(schema, map[string]any{"status": "SHIPPED"})
		assertWalkError(t, err, 400, "Invalid status")
	})

	t.Run("message override", func(t *testing.T) {
		schema := Schema{{
			Name: "status", Type: TypeCustom, Required: true,
			Format:  isStatus,
			Message: "status must be PENDING, COMPLETED or CANCELLED",
		}}
		_, err := Walk(schema, map[string]any{"status": "SHIPPED"})
		assertWalkError(t, err, 400, "status must be PENDING, COMPLETED or CANCELLED")
	})

	t.Run("tagged error passes through verbatim", func(t *testing.T) {
		schema := Schema{{
			Name: "coupon", Type: TypeCustom, Required: true,
			Format: func(any) (bool, error) {
				return false, apperr.New(409, "coupon already redeemed")
			},
		}}
		_, err := Walk(schema, map[string]any{"coupon": "XYZ"})
		assertWalkError(t, err, 409, "coupon already redeemed")
	})

	t.Run("untagged error wrapped as internal", func(t *testing.T) {
		schema := Schema{{
			Name: "coupon", Type: TypeCustom, Required: true,
			Format: func(any) (bool, error) { return false, errors.New("boom") },
		}}
		_, err := Walk(schema, map[string]any{"coupon": "XYZ"})
		assertWalkError(t, err, 500, "boom")
	})
}

func TestWalkValidateGuard(t *testing.T) {
	schema := Schema{{
		Name: "rating", Type: TypeInteger, Required: true,
		Validate: func(v any) error {
			if n := toInt64(v).(int64); n < 1 || n > 5 {
				return apperr.New(400, "rating must be between 1 and 5")
			}
			return nil
		},
	}}

	if _, err := Walk(schema, map[string]any{"rating": float64(4)}); err != nil {
		t.Fatalf("in-range rating rejected: %v", err)
	}
	_, err := Walk(schema, map[string]any{"rating": float64(9)})
	assertWalkError(t, err, 400, "rating must be between 1 and 5")
}

// Guards run on the canonical value, so a numeric-string input cannot
// slip past a guard that only understands numbers.
func TestWalkValidateSeesCanonicalValue(t *testing.T) {
	schema := Schema{{
		Name: "price", Type: TypeNumber, Required: true,
		Validate: func(v any) error {
			if n, ok := v.(float64); ok && n < 0 {
				return apperr.New(400, "price must not be negative")
			}
			return nil
		},
	}}

	_, err := Walk(schema, map[string]any{"price": "-5"})
	assertWalkError(t, err, 400, "price must not be negative")

	out, err := Walk(schema, map[string]any{"price": "5"})
	if err != nil {
		t.Fatalf("valid string price rejected: %v", err)
	}
	if out["price"] != float64(5) {
		t.Errorf("price = %v (%T)", out["price"], out["price"])
	}
}

func TestWalkParams(t *testing.T) {
	schema := Schema{
		{Name: "bookId", Type: TypeInteger, Required: true},
		{Name: "page", Type: TypeInteger, Required: false},
	}

	t.Run("required and transformed", func(t *testing.T) {
		out, err := WalkParams(schema, map[string]any{"bookId": "12"})
		if err != nil {
			t.Fatalf("WalkParams() error = %v", err)
		}
		if out["bookId"] != int64(12) {
			t.Errorf("bookId = %v (%T)", out["bookId"], out["bookId"])
		}
	})

	t.Run("missing required", func(t *testing.T) {
		_, err := WalkParams(schema, map[string]any{})
		assertWalkError(t, err, 400, "bookId is required")
	})

	t.Run("empty string counts as absent", func(t *testing.T) {
		_, err := WalkParams(schema, map[string]any{"bookId": ""})
		assertWalkError(t, err, 400, "bookId is required")
	})

	t.Run("guard sees canonical value", func(t *testing.T) {
		guarded := Schema{{
			Name: "page", Type: TypeInteger,
			Validate: func(v any) error {
				if n, ok := v.(int64); ok && n < 1 {
					return apperr.New(400, "page must be positive")
				}
				return nil
			},
		}}
		_, err := WalkParams(guarded, map[string]any{"page": "0"})
		assertWalkError(t, err, 400, "page must be positive")
	})
}

func TestWalkParamsCustomFormat(t *testing.T) {
	schema := Schema{{
		Name: "status", Type: TypeCustom,
		Format: func(v any) (bool, error) {
			s, ok := v.(string)
			return ok && (s == "PENDING" || s == "COMPLETED"), nil
		},
		Message: "Provide a valid order status",
	}}

	out, err := WalkParams(schema, map[string]any{"status": "PENDING"})
	if err != nil {
		t.Fatalf("valid status rejected: %v", err)
	}
	if out["status"] != "PENDING" {
		t.Errorf("status = %v", out["status"])
	}

	_, err = WalkParams(schema, map[string]any{"status": "SHIPPED"})
	assertWalkError(t, err, 400, "Provide a valid order status")

	// Absent optional custom params are skipped.
	if _, err := WalkParams(schema, map[string]any{}); err != nil {
		t.Fatalf("absent optional custom param failed: %v", err)
	}
}

func assertWalkError(t *testing.T, err error, status int, msg string) {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error")
	}
	e := apperr.From(err)
	if e.Status != status {
		t.Errorf("status = %d, want %d", e.Status, status)
	}
	if e.Message != msg {
		t.Errorf("message = %q, want %q", e.Message, msg)
	}
}

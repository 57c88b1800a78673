package api

import (
	"github.com/openshelf/openshelf/domain/order"
	"github.com/openshelf/openshelf/domain/validation"
	"github.com/openshelf/openshelf/pkg/apperr"
)

// Request schemas. Declared once at package init; MustCheck catches
// schema-author mistakes at startup rather than per request.

var registerSchema = validation.Schema{
	{Name: "email", Type: validation.TypeEmail, Required: true},
	{Name: "password", Type: validation.TypePassword, Required: true},
	{Name: "full_name", Type: validation.TypePureName, Required: true},
	{Name: "phone", Type: validation.TypePhone},
}.MustCheck()

var loginSchema = validation.Schema{
	{Name: "email", Type: validation.TypeEmail, Required: true},
	{Name: "password", Type: validation.TypeString, Required: true},
}.MustCheck()

var forgotPasswordSchema = validation.Schema{
	{Name: "email", Type: validation.TypeEmail, Required: true},
}.MustCheck()

var resetPasswordSchema = validation.Schema{
	{Name: "token", Type: validation.TypeString, Required: true},
	{Name: "password", Type: validation.TypePassword, Required: true},
}.MustCheck()

var changePasswordSchema = validation.Schema{
	{Name: "current_password", Type: validation.TypeString, Required: true},
	{Name: "new_password", Type: validation.TypePassword, Required: true},
}.MustCheck()

var bookSchema = validation.Schema{
	{Name: "title", Type: validation.TypeString, Required: true},
	{Name: "author", Type: validation.TypePureName, Required: true},
	{Name: "description", Type: validation.TypeString},
	{Name: "isbn", Type: validation.TypeAlphaName},
	{Name: "price", Type: validation.TypeNumber, Required: true, Validate: nonNegative("price")},
	{Name: "category_ids", Type: validation.TypeArray, ArrayType: validation.TypeString},
	{Name: "published_at", Type: validation.TypeDateTime},
	{Name: "is_active", Type: validation.TypeBoolean},
}.MustCheck()

var categorySchema = validation.Schema{
	{Name: "name", Type: validation.TypePureName, Required: true},
	{Name: "description", Type: validation.TypeString},
}.MustCheck()

var purchaseSchema = validation.Schema{
	{Name: "book_id", Type: validation.TypeString, Required: true},
}.MustCheck()

var purchaseStatusSchema = validation.Schema{
	{
		Name:     "status",
		Type:     validation.TypeCustom,
		Required: true,
		Format: func(value any) (bool, error) {
			s, ok := value.(string)
			return ok && order.Status(s).Valid(), nil
		},
		Message: "Provide a valid order status",
	},
}.MustCheck()

var reviewSchema = validation.Schema{
	{Name: "rating", Type: validation.TypeInteger, Required: true},
	{Name: "comment", Type: validation.TypeString},
}.MustCheck()

var listBooksSchema = validation.Schema{
	{Name: "search", Type: validation.TypeString},
	{Name: "category_id", Type: validation.TypeString},
	{Name: "page", Type: validation.TypeInteger},
	{Name: "per_page", Type: validation.TypeInteger},
}.MustCheck()

var pagingSchema = validation.Schema{
	{Name: "page", Type: validation.TypeInteger},
	{Name: "per_page", Type: validation.TypeInteger},
}.MustCheck()

var adminOrdersSchema = validation.Schema{
	{Name: "page", Type: validation.TypeInteger},
	{Name: "per_page", Type: validation.TypeInteger},
	{
		Name: "status",
		Type: validation.TypeCustom,
		Format: func(value any) (bool, error) {
			s, ok := value.(string)
			return ok && order.Status(s).Valid(), nil
		},
		Message: "Provide a valid order status",
	},
}.MustCheck()

var financeTrendsSchema = validation.Schema{
	{Name: "start_date", Type: validation.TypeDateTime, Required: true},
	{Name: "end_date", Type: validation.TypeDateTime, Required: true},
}.MustCheck()

var userRoleSchema = validation.Schema{
	{Name: "role", Type: validation.TypeString, Required: true},
}.MustCheck()

var userActiveSchema = validation.Schema{
	{Name: "is_active", Type: validation.TypeBoolean, Required: true},
}.MustCheck()

var userPermissionsSchema = validation.Schema{
	{Name: "permissions", Type: validation.TypeArray, Required: true, ArrayType: validation.TypeString},
}.MustCheck()

func nonNegative(field string) func(any) error {
	return func(value any) error {
		if n, ok := value.(float64); ok && n < 0 {
			return apperr.Newf(400, "%s must not be negative", field)
		}
		return nil
	}
}

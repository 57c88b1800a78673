package api

import (
	"time"

	"github.com/openshelf/openshelf/app"
	"github.com/openshelf/openshelf/domain/catalog"
	"github.com/openshelf/openshelf/domain/identity"
	"github.com/openshelf/openshelf/domain/order"
	"github.com/openshelf/openshelf/ports"
)

// View types shape domain values for JSON clients.

type userView struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	FullName    string    `json:"full_name"`
	Phone       string    `json:"phone,omitempty"`
	Role        string    `json:"role"`
	Permissions []string  `json:"permissions"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

func toUserView(u identity.User) userView {
	perms := u.Permissions
	if perms == nil {
		perms = []string{}
	}
	return userView{
		ID:          u.ID,
		Email:       u.Email,
		FullName:    u.FullName,
		Phone:       u.Phone,
		Role:        string(u.Role),
		Permissions: perms,
		IsActive:    u.IsActive,
		CreatedAt:   u.CreatedAt,
	}
}

func toUserViews(users []identity.User) []userView {
	out := make([]userView, len(users))
	for i, u := range users {
		out[i] = toUserView(u)
	}
	return out
}

type authView struct {
	User  userView `json:"user"`
	Token string   `json:"token"`
}

type bookView struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Author        string     `json:"author"`
	Description   string     `json:"description,omitempty"`
	ISBN          string     `json:"isbn,omitempty"`
	Price         float64    `json:"price"`
	CoverURL      string     `json:"cover_url,omitempty"`
	CategoryIDs   []string   `json:"category_ids"`
	PublishedAt   *time.Time `json:"published_at,omitempty"`
	IsActive      bool       `json:"is_active"`
	AverageRating float64    `json:"average_rating"`
	ReviewCount   int64      `json:"review_count"`
	CreatedAt     time.Time  `json:"created_at"`
}

func toBookView(b catalog.Book) bookView {
	ids := b.CategoryIDs
	if ids == nil {
		ids = []string{}
	}
	v := bookView{
		ID:            b.ID,
		Title:         b.Title,
		Author:        b.Author,
		Description:   b.Description,
		ISBN:          b.ISBN,
		Price:         b.Price,
		CoverURL:      b.CoverURL,
		CategoryIDs:   ids,
		IsActive:      b.IsActive,
		AverageRating: b.AverageRating,
		ReviewCount:   b.ReviewCount,
		CreatedAt:     b.CreatedAt,
	}
	if !b.PublishedAt.IsZero() {
		t := b.PublishedAt
		v.PublishedAt = &t
	}
	return v
}

func toBookViews(books []catalog.Book) []bookView {
	out := make([]bookView, len(books))
	for i, b := range books {
		out[i] = toBookView(b)
	}
	return out
}

type pageView[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	TotalPages int64 `json:"total_pages"`
}

func toBookPageView(p catalog.Page[catalog.Book]) pageView[bookView] {
	items := toBookViews(p.Items)
	if items == nil {
		items = []bookView{}
	}
	return pageView[bookView]{
		Items:      items,
		Total:      p.Total,
		Page:       p.PageNumber,
		PerPage:    p.PerPage,
		TotalPages: p.TotalPages(),
	}
}

type categoryView struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	BookCount   int64     `json:"book_count"`
	CreatedAt   time.Time `json:"created_at"`
}

func toCategoryView(c catalog.Category) categoryView {
	return categoryView{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		BookCount:   c.BookCount,
		CreatedAt:   c.CreatedAt,
	}
}

func toCategoryViews(categories []catalog.Category) []categoryView {
	out := make([]categoryView, len(categories))
	for i, c := range categories {
		out[i] = toCategoryView(c)
	}
	return out
}

type purchaseView struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	BookID    string    `json:"book_id"`
	Amount    float64   `json:"amount"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toPurchaseView(p order.Purchase) purchaseView {
	return purchaseView{
		ID:        p.ID,
		UserID:    p.UserID,
		BookID:    p.BookID,
		Amount:    p.Amount,
		Status:    string(p.Status),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func toPurchaseViews(purchases []order.Purchase) []purchaseView {
	out := make([]purchaseView, len(purchases))
	for i, p := range purchases {
		out[i] = toPurchaseView(p)
	}
	return out
}

type reviewView struct {
	ID        string    `json:"id"`
	BookID    string    `json:"book_id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name,omitempty"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toReviewView(r catalog.Review) reviewView {
	return reviewView{
		ID:        r.ID,
		BookID:    r.BookID,
		UserID:    r.UserID,
		UserName:  r.UserName,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func toReviewViews(reviews []catalog.Review) []reviewView {
	out := make([]reviewView, len(reviews))
	for i, r := range reviews {
		out[i] = toReviewView(r)
	}
	return out
}

type statsView struct {
	Users           int64   `json:"users"`
	Books           int64   `json:"books"`
	Categories      int64   `json:"categories"`
	Orders          int64   `json:"orders"`
	OrdersPending   int64   `json:"orders_pending"`
	OrdersCompleted int64   `json:"orders_completed"`
	OrdersCancelled int64   `json:"orders_cancelled"`
	Revenue         float64 `json:"revenue"`
}

type financeOverviewView struct {
	Revenue         float64 `json:"revenue"`
	Orders          int64   `json:"orders"`
	OrdersPending   int64   `json:"orders_pending"`
	OrdersCompleted int64   `json:"orders_completed"`
	OrdersCancelled int64   `json:"orders_cancelled"`
}

func toFinanceOverviewView(o app.FinanceOverview) financeOverviewView {
	return financeOverviewView{
		Revenue:         o.Revenue,
		Orders:          o.Orders,
		OrdersPending:   o.OrdersPending,
		OrdersCompleted: o.OrdersCompleted,
		OrdersCancelled: o.OrdersCancelled,
	}
}

type revenuePointView struct {
	Day     string  `json:"day"`
	Orders  int64   `json:"orders"`
	Revenue float64 `json:"revenue"`
}

func toRevenuePointViews(points []ports.RevenuePoint) []revenuePointView {
	out := make([]revenuePointView, len(points))
	for i, p := range points {
		out[i] = revenuePointView{Day: p.Day, Orders: p.Orders, Revenue: p.Revenue}
	}
	return out
}

type userStatsView struct {
	LibraryCount   int64   `json:"library_count"`
	PurchasesCount int64   `json:"purchases_count"`
	ReviewsCount   int64   `json:"reviews_count"`
	TotalSpent     float64 `json:"total_spent"`
}

func toUserStatsView(s app.UserStats) userStatsView {
	return userStatsView{
		LibraryCount:   s.LibraryCount,
		PurchasesCount: s.PurchasesCount,
		ReviewsCount:   s.ReviewsCount,
		TotalSpent:     s.TotalSpent,
	}
}

func toStatsView(s app.Stats) statsView {
	return statsView{
		Users:           s.Users,
		Books:           s.Books,
		Categories:      s.Categories,
		Orders:          s.Orders,
		OrdersPending:   s.OrdersPending,
		OrdersCompleted: s.OrdersCompleted,
		OrdersCancelled: s.OrdersCancelled,
		Revenue:         s.Revenue,
	}
}

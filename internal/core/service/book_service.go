package service

import (
	"context"
	"fmt"

	"github.com/sirpyerre/user-management-api/internal/core/domain"
	"github.com/sirpyerre/user-management-api/internal/core/ports"
	"github.com/sirpyerre/user-management-api/internal/core/query"
)

type catalogEntry struct {
	en, zh, my string
	author     string
	category   string
	price      float64
	stock      int
}

var catalog = []catalogEntry{
	{"The Silent River", "寂静的河流", "တိတ်ဆိတ်သောမြစ်", "Aung Min", "Fiction", 12.99, 14},
	{"Mountains of Mandalay", "曼德勒的群山", "မန္တလေးတောင်တန်းများ", "Khin Myo", "Travel", 18.50, 6},
	{"Learning Go", "学习 Go 语言", "Go ဘာသာစကားလေ့လာခြင်း", "Jon Bodner", "Technology", 39.99, 22},
	{"Tea House Stories", "茶馆故事", "လက်ဖက်ရည်ဆိုင်ပုံပြင်များ", "Lao She", "Fiction", 9.75, 0},
	{"The Golden Pagoda", "金色宝塔", "ရွှေစေတီ", "Ma Thida", "History", 24.00, 3},
	{"Monsoon Kitchen", "季风厨房", "မိုးရာသီမီးဖိုချောင်", "Daw Aye", "Cooking", 15.25, 11},
	{"Distributed Systems", "分布式系统", "ဖြန့်ဝေစနစ်များ", "Maarten van Steen", "Technology", 54.90, 8},
	{"Journey to the West", "西游记", "အနောက်ခရီး", "Wu Cheng'en", "Classics", 21.40, 17},
	{"Rice and Rain", "稻米与雨", "ဆန်နှင့်မိုး", "Nu Nu Yi", "Fiction", 11.10, 5},
	{"Modern Yangon", "现代仰光", "ခေတ်သစ်ရန်ကုန်", "Thant Myint-U", "History", 28.80, 9},
	{"Gardens of Suzhou", "苏州园林", "ဆူကျိုးဥယျာဉ်များ", "Chen Congzhou", "Art", 33.00, 2},
	{"Night Market", "夜市", "ညဈေး", "Li Wei", "Cooking", 13.60, 20},
}

// BookService serves the read-only demo catalogue.
type BookService struct {
	defaultPageSize int
	maxPageSize     int
}

func NewBookService() *BookService {
	return &BookService{defaultPageSize: DefaultPageSize, maxPageSize: MaxPageSize}
}

// Books builds the catalogue. It is rebuilt on every call and never mutated.
func Books() []domain.Book {
	out := make([]domain.Book, 0, len(catalog))
	for i, c := range catalog {
		out = append(out, domain.Book{
			ID:       fmt.Sprintf("book_%d", i+1),
			BookName: domain.Localized{En: c.en, Zh: c.zh, My: c.my},
			BookDescription: domain.Localized{
				En: fmt.Sprintf("%s, a %s title by %s.", c.en, c.category, c.author),
				Zh: fmt.Sprintf("%s 所著的《%s》。", c.author, c.zh),
				My: fmt.Sprintf("%s ၏ %s", c.author, c.my),
			},
			AuthorDescription: domain.Localized{
				En: fmt.Sprintf("%s writes about %s.", c.author, c.category),
				Zh: fmt.Sprintf("%s，作家。", c.author),
				My: fmt.Sprintf("%s (စာရေးဆရာ)", c.author),
			},
			ISBN:     fmt.Sprintf("978-1-%04d-%04d-%d", 1000+i*37, 2000+i*53, i%10),
			Author:   c.author,
			Price:    c.price,
			Stock:    c.stock,
			Category: c.category,
		})
	}
	return out
}

func (s *BookService) ListBooks(_ context.Context, in ports.ListBooksInput) (*ports.ListBooksResult, error) {
	page, pageSize := query.Normalize(in.Page, in.PageSize, s.defaultPageSize, s.maxPageSize)

	books := Books()
	if in.SearchKey != "" {
		books = query.Filter(books, func(b domain.Book) bool {
			return query.ContainsFold(b.BookName.En, in.SearchKey) ||
				query.ContainsFold(b.BookName.Zh, in.SearchKey) ||
				query.ContainsFold(b.BookName.My, in.SearchKey) ||
				query.ContainsFold(b.Author, in.SearchKey) ||
				query.ContainsFold(b.ISBN, in.SearchKey) ||
				query.ContainsFold(b.Category, in.SearchKey)
		})
	}
	if in.SortBy != "" {
		books = query.Sort(books, bookComparator(in.SortBy), in.SortOrder)
	}

	items, meta := query.Paginate(books, page, pageSize)
	return &ports.ListBooksResult{Items: items, Page: meta}, nil
}

func bookComparator(field string) query.Comparator[domain.Book] {
	switch field {
	case "author":
		return query.ByString(func(b domain.Book) string { return b.Author })
	case "price":
		return query.ByNumber(func(b domain.Book) float64 { return b.Price })
	case "stock":
		return query.ByNumber(func(b domain.Book) int { return b.Stock })
	case "category":
		return query.ByString(func(b domain.Book) string { return b.Category })
	case "isbn":
		return query.ByString(func(b domain.Book) string { return b.ISBN })
	default:
		return query.ByString(func(b domain.Book) string { return b.BookName.En })
	}
}

package service

import (
	"context"
	"testing"

	"github.com/sirpyerre/user-management-api/internal/core/ports"
	"github.com/sirpyerre/user-management-api/internal/core/query"
)

func TestBookService_ListBooks_Paginates(t *testing.T) {
	svc := NewBookService()

	res, err := svc.ListBooks(context.Background(), ports.ListBooksInput{Page: 2, PageSize: 5})
	if err != nil {
		t.Fatalf("ListBooks returned error: %v", err)
	}
	if res.Page.Total != len(catalog) || res.Page.TotalPages != 3 {
		t.Fatalf("unexpected page meta: %+v", res.Page)
	}
	if len(res.Items) != 5 || res.Items[0].ID != "book_6" {
		t.Fatalf("unexpected page items: %d first=%s", len(res.Items), res.Items[0].ID)
	}
}

func TestBookService_ListBooks_SearchAcrossLocales(t *testing.T) {
	svc := NewBookService()

	cases := map[string]string{
		"journey": "book_8",
		"西游记":     "book_8",
		"ညဈေး":    "book_12",
		"lao she": "book_4",
	}
	for key, want := range cases {
		res, err := svc.ListBooks(context.Background(), ports.ListBooksInput{SearchKey: key})
		if err != nil {
			t.Fatalf("ListBooks returned error: %v", err)
		}
		if len(res.Items) != 1 || res.Items[0].ID != want {
			t.Fatalf("search %q: expected %s, got %+v", key, want, res.Items)
		}
	}

	res, err := svc.ListBooks(context.Background(), ports.ListBooksInput{SearchKey: "technology"})
	if err != nil {
		t.Fatalf("ListBooks returned error: %v", err)
	}
	if res.Page.Total != 2 {
		t.Fatalf("expected 2 technology books, got %d", res.Page.Total)
	}
}

func TestBookService_ListBooks_SortByPrice(t *testing.T) {
	svc := NewBookService()

	res, err := svc.ListBooks(context.Background(), ports.ListBooksInput{SortBy: "price", SortOrder: query.Desc, PageSize: 100})
	if err != nil {
		t.Fatalf("ListBooks returned error: %v", err)
	}
	for i := 1; i < len(res.Items); i++ {
		if res.Items[i].Price > res.Items[i-1].Price {
			t.Fatalf("prices not descending at %d", i)
		}
	}
	if res.Items[0].BookName.En != "Distributed Systems" {
		t.Fatalf("expected most expensive book first, got %s", res.Items[0].BookName.En)
	}
}

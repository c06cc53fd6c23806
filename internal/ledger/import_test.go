package ledger

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/ovolkov/finbot/internal/database/repository"
)

func TestImportTransactionsLineIsolation(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()
	setup(t, svc, "0")

	date := time.Date(2024, 5, 24, 0, 0, 0, 0, time.UTC)
	input := "Salary - 100\nBAD LINE\nSalary - 200,50 - bonus"

	res, err := svc.ImportTransactions(ctx, 1, repository.CategoryIncome, date, input)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.Succeeded != 2 {
		t.Errorf("succeeded = %d, want 2", res.Succeeded)
	}
	if len(res.Errors) != 1 || res.Errors[0].Line != 2 {
		t.Fatalf("errors = %+v, want one error on line 2", res.Errors)
	}

	entries, err := svc.Transactions.ListJoined(ctx, 1, repository.EntryFilters{Oldest: true})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	for _, e := range entries {
		if !e.CreatedAt.Equal(date) {
			t.Errorf("entry dated %v, want %v", e.CreatedAt, date)
		}
	}
	if entries[1].Description == nil || *entries[1].Description != "bonus" {
		t.Errorf("description = %v, want bonus", entries[1].Description)
	}

	balance, err := svc.Users.Balance(ctx, 1)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance.String() != "300.5" {
		t.Errorf("balance = %s, want 300.5", balance)
	}
}

func TestImportTransactionsTypeScoped(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()
	setup(t, svc, "0")

	// Food exists, but only as an expense category
	res, err := svc.ImportTransactions(ctx, 1, repository.CategoryIncome,
		time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), "Food - 10")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.Succeeded != 0 || len(res.Errors) != 1 {
		t.Fatalf("result = %+v, want one category-not-found error", res)
	}
	if !strings.Contains(res.Errors[0].Err.Error(), "not found") {
		t.Errorf("err = %v, want category not found", res.Errors[0].Err)
	}
}

func TestImportWishes(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()
	setup(t, svc, "0")

	res, err := svc.ImportWishes(ctx, 1, "Laptop - 1500\nno dash here\nTrip - 50000")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.Succeeded != 2 {
		t.Errorf("succeeded = %d, want 2", res.Succeeded)
	}
	if len(res.Errors) != 1 || res.Errors[0].Line != 2 {
		t.Errorf("errors = %+v, want one error on line 2", res.Errors)
	}

	n, err := svc.Wishes.Count(ctx, 1)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Errorf("wishes = %d, want 2", n)
	}
}

func TestParseTransactionLine(t *testing.T) {
	cases := []struct {
		in       string
		category string
		amount   string
		desc     string
		wantErr  bool
	}{
		{"Food - 100", "Food", "100", "", false},
		{"Food - 100,50 - lunch", "Food", "100.5", "lunch", false},
		{"Food-100-lunch", "Food", "100", "lunch", false},
		{"Food - 100 - ", "Food", "100", "", false},
		{"justtext", "", "", "", true},
		{" - 100", "", "", "", true},
		{"Food - abc", "", "", "", true},
	}
	for _, tc := range cases {
		category, amount, desc, err := parseTransactionLine(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("parse(%q): no error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parse(%q): %v", tc.in, err)
			continue
		}
		if category != tc.category || amount.String() != tc.amount {
			t.Errorf("parse(%q) = %s/%s, want %s/%s", tc.in, category, amount, tc.category, tc.amount)
		}
		got := ""
		if desc != nil {
			got = *desc
		}
		if got != tc.desc {
			t.Errorf("parse(%q) desc = %q, want %q", tc.in, got, tc.desc)
		}
	}
}

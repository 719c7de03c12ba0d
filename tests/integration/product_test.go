//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"testing"
)

func TestListProducts(t *testing.T) {
	resp := doGet(t, "/api/products")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	products := decodeJSON[[]productResponse](t, resp)
	if len(products) != 10 {
		t.Fatalf("expected 10 products, got %d", len(products))
	}
}

func TestListProducts_Fields(t *testing.T) {
	resp := doGet(t, "/api/products")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	for _, p := range decodeJSON[[]productResponse](t, resp) {
		if p.ID == 0 {
			t.Error("product id is zero")
		}
		if p.Name == "" {
			t.Error("product name is empty")
		}
		if p.Price == "" || p.Price == "0" {
			t.Errorf("product %d has no price", p.ID)
		}
		if p.CategoryID == 0 {
			t.Errorf("product %d has no category", p.ID)
		}
	}
}

func TestGetProduct(t *testing.T) {
	list := func() []productResponse {
		resp := doGet(t, "/api/products")
		defer resp.Body.Close()
		return decodeJSON[[]productResponse](t, resp)
	}()
	if len(list) == 0 {
		t.Fatal("no products seeded")
	}

	resp := doGet(t, fmt.Sprintf("/api/products/%d", list[0].ID))
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	product := decodeJSON[productResponse](t, resp)
	if product.ID != list[0].ID {
		t.Errorf("id: got %d, want %d", product.ID, list[0].ID)
	}
	if product.Name != list[0].Name {
		t.Errorf("name: got %q, want %q", product.Name, list[0].Name)
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	resp := doGet(t, "/api/products/999999")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	errResp := decodeJSON[errorResponse](t, resp)
	if errResp.Code != 404 {
		t.Errorf("error code: got %d, want 404", errResp.Code)
	}
}

func TestCategories_CRUD(t *testing.T) {
	resp := doGet(t, "/api/categories")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list categories: expected 200, got %d", resp.StatusCode)
	}
	before := decodeJSON[[]categoryResponse](t, resp)
	resp.Body.Close()
	if len(before) != 3 {
		t.Fatalf("expected 3 seeded categories, got %d", len(before))
	}

	// Writes need an admin key.
	resp = doPost(t, "/api/categories", categoryResponse{Name: "Audio"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unauthenticated create: expected 401, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doPostWithAuth(t, "/api/categories", categoryResponse{Name: "Audio"}, adminAPIKey)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create category: expected 201, got %d", resp.StatusCode)
	}
	created := decodeJSON[categoryResponse](t, resp)
	resp.Body.Close()
	if created.ID == 0 {
		t.Fatal("created category has no id")
	}
}

func TestCustomers_RegisterAndFetch(t *testing.T) {
	resp := doPost(t, "/api/customers", map[string]string{
		"name":  "Integration Customer",
		"email": "integration@example.com",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create customer: expected 201, got %d", resp.StatusCode)
	}
	created := decodeJSON[customerResponse](t, resp)
	resp.Body.Close()

	// Duplicate email conflicts.
	resp = doPost(t, "/api/customers", map[string]string{
		"name":  "Copycat",
		"email": "integration@example.com",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate email: expected 409, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// The admin can read the new customer; anonymous callers cannot.
	resp = doGetWithAuth(t, fmt.Sprintf("/api/customers/%d", created.ID), adminAPIKey)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin fetch: expected 200, got %d", resp.StatusCode)
	}
	fetched := decodeJSON[customerResponse](t, resp)
	resp.Body.Close()
	if fetched.Email != "integration@example.com" {
		t.Errorf("email: got %q", fetched.Email)
	}

	resp = doGet(t, fmt.Sprintf("/api/customers/%d", created.ID))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous fetch: expected 401, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

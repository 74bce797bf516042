//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"testing"
	"time"

	tc "github.com/testcontainers/testcontainers-go/modules/compose"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	baseURL    string
	backendURL string
	httpClient *http.Client
)

// Response types, defined locally so the tests stay black-box.

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

type itemResponse struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type lineResponse struct {
	Index     int     `json:"index"`
	ItemID    int64   `json:"itemId"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	LineTotal float64 `json:"lineTotal"`
}

type entryResponse struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Discount string `json:"discount"`
}

type cartResponse struct {
	Lines           []lineResponse `json:"lines"`
	Count           int            `json:"count"`
	RawTotal        float64        `json:"rawTotal"`
	Discount        float64        `json:"discount"`
	DiscountedTotal float64        `json:"discountedTotal"`
	Customer        entryResponse  `json:"customer"`
}

type orderCodeResponse struct {
	Current string `json:"current"`
	Ready   bool   `json:"ready"`
}

type consoleResponse struct {
	Menu      []itemResponse    `json:"menu"`
	Cart      cartResponse      `json:"cart"`
	OrderCode orderCodeResponse `json:"orderCode"`
}

type orderResponse struct {
	ID    int64   `json:"id"`
	Code  string  `json:"code"`
	Total float64 `json:"total"`
}

type placeOrderResponse struct {
	Message         string        `json:"message"`
	Order           orderResponse `json:"order"`
	CustomerCreated bool          `json:"customerCreated"`
	Cart            cartResponse  `json:"cart"`
}

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field"`
}

func TestMain(m *testing.M) {
	os.Exit(testMain(m))
}

func testMain(m *testing.M) int {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	// Coverage output of the instrumented console binary.
	if err := os.MkdirAll("coverdir", 0o777); err != nil {
		log.Fatalf("create coverdir: %v", err)
	}

	dc, err := tc.NewDockerCompose("docker-compose.test.yml")
	if err != nil {
		log.Fatalf("compose init: %v", err)
	}

	// Start the stub backend and the console, wait until the console is ready.
	err = dc.
		WaitForService("console", wait.ForHTTP("/readyz").WithPort("8090/tcp")).
		Up(ctx, tc.Wait(true))
	if err != nil {
		log.Fatalf("compose up: %v", err)
	}

	baseURL, err = serviceURL(ctx, dc, "console", "8090/tcp")
	if err != nil {
		log.Fatalf("console: %v", err)
	}
	backendURL, err = serviceURL(ctx, dc, "backend", "8080/tcp")
	if err != nil {
		log.Fatalf("backend: %v", err)
	}
	httpClient = &http.Client{Timeout: 10 * time.Second}
	log.Printf("Console available at %s, backend stub at %s", baseURL, backendURL)

	result := m.Run()

	// Stop the console gracefully so the coverage-instrumented binary flushes
	// to GOCOVERDIR. app.Run shuts down on SIGINT, see stop_signal.
	if console, err := dc.ServiceContainer(ctx, "console"); err == nil {
		stopTimeout := 30 * time.Second
		if err := console.Stop(ctx, &stopTimeout); err != nil {
			log.Printf("stop console container: %v", err)
		}
	}

	if err := dc.Down(context.Background(), tc.RemoveOrphans(true)); err != nil {
		log.Printf("compose down: %v", err)
	}

	return result
}

func serviceURL(ctx context.Context, dc *tc.DockerCompose, service, port string) (string, error) {
	c, err := dc.ServiceContainer(ctx, service)
	if err != nil {
		return "", fmt.Errorf("container: %w", err)
	}
	host, err := c.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("host: %w", err)
	}
	mapped, err := c.MappedPort(ctx, port)
	if err != nil {
		return "", fmt.Errorf("mapped port: %w", err)
	}
	return fmt.Sprintf("http://%s:%s", host, mapped.Port()), nil
}

// HTTP helpers.

func do(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, url, reader)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

func doConsole(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	return do(t, method, baseURL+path, body)
}

func decodeJSON[T any](t *testing.T, resp *http.Response) T {
	t.Helper()

	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("expected %d, got %d", want, resp.StatusCode)
	}
}

// resetCart empties the console's cart and customer fields so every test
// starts from the same state.
func resetCart(t *testing.T) {
	t.Helper()

	for {
		resp := doConsole(t, http.MethodGet, "/api/cart", nil)
		cart := decodeJSON[cartResponse](t, resp)
		resp.Body.Close()
		if len(cart.Lines) == 0 {
			break
		}
		resp = doConsole(t, http.MethodDelete, "/api/cart/items/0", nil)
		resp.Body.Close()
	}

	resp := doConsole(t, http.MethodPut, "/api/cart/customer", map[string]string{"name": "", "phone": ""})
	resp.Body.Close()
	resp = doConsole(t, http.MethodPut, "/api/cart/discount", map[string]string{"discount": "0"})
	resp.Body.Close()
}

// backendRequests returns the bodies the stub backend received for a method
// and URL, using WireMock's request journal.
func backendRequests(t *testing.T, method, url string) []json.RawMessage {
	t.Helper()

	resp := do(t, http.MethodPost, backendURL+"/__admin/requests/find", map[string]string{
		"method": method,
		"url":    url,
	})
	defer resp.Body.Close()
	expectStatus(t, resp, http.StatusOK)

	found := decodeJSON[struct {
		Requests []struct {
			Body string `json:"body"`
		} `json:"requests"`
	}](t, resp)

	out := make([]json.RawMessage, len(found.Requests))
	for i, r := range found.Requests {
		out[i] = json.RawMessage(r.Body)
	}
	return out
}

func resetBackendJournal(t *testing.T) {
	t.Helper()

	resp := do(t, http.MethodDelete, backendURL+"/__admin/requests", nil)
	resp.Body.Close()
}

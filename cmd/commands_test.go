package cmd

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/swadbest/shopctl/internal/output"
	"github.com/swadbest/shopctl/internal/shop"
)

var honey = map[string]any{
	"id":   "p1",
	"name": "Wild Honey",
	"variants": []map[string]any{
		{"id": "v0", "label": "1kg", "price": 800, "stock": 0},
		{"id": "v1", "label": "500g", "price": 450, "mrp": 500, "stock": 3},
	},
}

func TestLogin_WhoamiLogout(t *testing.T) {
	b := setupCmdTest(t)
	signIn(t, b)

	res := runCmd(t, "", "whoami")
	if res.err != nil {
		t.Fatalf("whoami failed: %v", res.err)
	}
	assertContains(t, res.stdout, "Asha <asha@example.com>", "u1")

	res = runCmd(t, "", "logout")
	if res.err != nil {
		t.Fatalf("logout failed: %v", res.err)
	}
	assertContains(t, res.stdout, "Logged out")

	res = runCmd(t, "", "whoami")
	assertContains(t, res.stdout, "Not logged in")

	data, err := os.ReadFile(os.Getenv("SHOPCTL_SESSION_FILE"))
	if err == nil && strings.Contains(string(data), "access-1") {
		t.Errorf("session file still holds the token:\n%s", data)
	}
}

func TestLogin_ReadsPasswordFromStdin(t *testing.T) {
	b := setupCmdTest(t)

	var body map[string]string
	b.handle(http.MethodPost, "/api/users/login", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&body)
		respond(w, http.StatusOK, map[string]any{
			"user":        map[string]string{"id": "u1", "email": "asha@example.com"},
			"accessToken": "access-1",
		})
	})

	res := runCmd(t, "from-stdin\n", "login", "--email", "asha@example.com")
	if res.err != nil {
		t.Fatalf("login failed: %v", res.err)
	}
	if body["password"] != "from-stdin" {
		t.Errorf("password = %q, want from-stdin", body["password"])
	}
	assertContains(t, res.stdout, "Logged in as asha@example.com")
}

func TestLogin_BadCredentials(t *testing.T) {
	b := setupCmdTest(t)
	b.reply(http.MethodPost, "/api/users/login", http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})

	res := runCmd(t, "", "login", "--email", "asha@example.com", "--password", "wrong")
	if got := res.exitCode(); got != output.ExitAuthError {
		t.Errorf("exit code = %d, want %d (err %v)", got, output.ExitAuthError, res.err)
	}
	if cli := output.FromError(res.err); cli.Summary != "Invalid credentials" {
		t.Errorf("summary = %q", cli.Summary)
	}
}

func TestExpiredSessionSignsOut(t *testing.T) {
	b := setupCmdTest(t)
	signIn(t, b)
	b.reply(http.MethodGet, "/api/orders/user", http.StatusUnauthorized, map[string]string{"message": "jwt expired"})

	res := runCmd(t, "", "orders", "list")
	if got := res.exitCode(); got != output.ExitAuthError {
		t.Errorf("exit code = %d, want %d", got, output.ExitAuthError)
	}

	res = runCmd(t, "", "whoami")
	assertContains(t, res.stdout, "Not logged in")
}

func TestProducts_ListAndShow(t *testing.T) {
	b := setupCmdTest(t)
	b.reply(http.MethodGet, "/api/products", http.StatusOK, map[string]any{
		"products": []any{honey},
		"total":    12,
		"page":     1,
	})
	b.reply(http.MethodGet, "/api/products/p1", http.StatusOK, map[string]any{"product": honey})

	res := runCmd(t, "", "products", "list", "--search", "honey")
	if res.err != nil {
		t.Fatalf("products list failed: %v", res.err)
	}
	assertContains(t, res.stdout, "Wild Honey", "₹450.00", "only 3 left", "Showing 1 of 12 products")
	if q := b.lastRequest(http.MethodGet, "/api/products").URL.Query().Get("search"); q != "honey" {
		t.Errorf("search query = %q", q)
	}

	res = runCmd(t, "", "products", "show", "p1")
	if res.err != nil {
		t.Fatalf("products show failed: %v", res.err)
	}
	assertContains(t, res.stdout, "Wild Honey", "500g", "₹500.00", "out of stock")
}

func TestProducts_MissingIsEmptyState(t *testing.T) {
	setupCmdTest(t)

	res := runCmd(t, "", "products", "show", "nope")
	if res.err != nil {
		t.Fatalf("missing product should exit cleanly, got %v", res.err)
	}
	assertContains(t, res.stdout, "Product nope not found")
}

func TestCartAdd_SignedOutSendsNothing(t *testing.T) {
	b := setupCmdTest(t)

	res := runCmd(t, "", "cart", "add", "p1", "v1")
	if !errors.Is(res.err, shop.ErrLoginRequired) {
		t.Fatalf("err = %v, want ErrLoginRequired", res.err)
	}
	if n := b.hitCount(http.MethodGet, "/api/products/p1") + b.hitCount(http.MethodPost, "/api/cart/add"); n != 0 {
		t.Errorf("expected no requests, got %d", n)
	}
}

func TestCartAdd_AddsAndRefreshesCounts(t *testing.T) {
	b := setupCmdTest(t)
	signIn(t, b)
	b.reply(http.MethodGet, "/api/products/p1", http.StatusOK, map[string]any{"product": honey})
	b.reply(http.MethodPost, "/api/cart/add", http.StatusOK, map[string]any{"cart": map[string]any{}})
	b.reply(http.MethodGet, "/api/cart/counts", http.StatusOK, map[string]int{"cartCount": 2, "wishlistCount": 1})

	res := runCmd(t, "", "cart", "add", "p1", "--qty", "2")
	if res.err != nil {
		t.Fatalf("cart add failed: %v", res.err)
	}
	assertContains(t, res.stdout, "Added: Wild Honey (500g) x2", "cart: 2  wishlist: 1")

	if got := b.hitCount(http.MethodPost, "/api/cart/add"); got != 1 {
		t.Errorf("add requests = %d, want 1", got)
	}
	if got := b.hitCount(http.MethodGet, "/api/cart/counts"); got != 1 {
		t.Errorf("counts requests = %d, want 1", got)
	}
	if auth := b.lastRequest(http.MethodPost, "/api/cart/add").Header.Get("Authorization"); auth != "Bearer access-1" {
		t.Errorf("Authorization = %q", auth)
	}
}

func TestCartAdd_OutOfStockVariant(t *testing.T) {
	b := setupCmdTest(t)
	signIn(t, b)
	b.reply(http.MethodGet, "/api/products/p1", http.StatusOK, map[string]any{"product": honey})

	res := runCmd(t, "", "cart", "add", "p1", "v0")
	if got := res.exitCode(); got != output.ExitValidation {
		t.Errorf("exit code = %d, want %d (err %v)", got, output.ExitValidation, res.err)
	}
	if got := b.hitCount(http.MethodPost, "/api/cart/add"); got != 0 {
		t.Errorf("add requests = %d, want 0", got)
	}
}

func TestCartShow(t *testing.T) {
	b := setupCmdTest(t)
	signIn(t, b)
	b.reply(http.MethodGet, "/api/cart", http.StatusOK, map[string]any{"cart": map[string]any{
		"items": []map[string]any{
			{"id": "i1", "productId": "p1", "variantId": "v1", "name": "Wild Honey", "variantLabel": "500g", "price": 450, "quantity": 2},
		},
	}})

	res := runCmd(t, "", "cart", "show")
	if res.err != nil {
		t.Fatalf("cart show failed: %v", res.err)
	}
	assertContains(t, res.stdout, "Wild Honey", "₹900.00", "Total: ₹900.00")
}

func TestCartClear_Confirmation(t *testing.T) {
	b := setupCmdTest(t)
	signIn(t, b)
	b.reply(http.MethodDelete, "/api/cart/clear", http.StatusOK, map[string]string{"message": "cleared"})
	b.reply(http.MethodGet, "/api/cart/counts", http.StatusOK, map[string]int{"cartCount": 0, "wishlistCount": 0})

	res := runCmd(t, "n\n", "cart", "clear")
	if res.err == nil || !strings.Contains(res.err.Error(), "cancelled") {
		t.Fatalf("declined clear should abort, got %v", res.err)
	}
	if got := b.hitCount(http.MethodDelete, "/api/cart/clear"); got != 0 {
		t.Fatalf("declined clear sent %d requests", got)
	}

	res = runCmd(t, "", "cart", "clear", "--yes")
	if res.err != nil {
		t.Fatalf("cart clear --yes failed: %v", res.err)
	}
	if got := b.hitCount(http.MethodDelete, "/api/cart/clear"); got != 1 {
		t.Errorf("clear requests = %d, want 1", got)
	}
}

func TestCartCounts_SignedOutIsZeroWithoutRequest(t *testing.T) {
	b := setupCmdTest(t)

	res := runCmd(t, "", "cart", "counts")
	if res.err != nil {
		t.Fatalf("cart counts failed: %v", res.err)
	}
	assertContains(t, res.stdout, "cart: 0  wishlist: 0")
	if got := b.hitCount(http.MethodGet, "/api/cart/counts"); got != 0 {
		t.Errorf("counts requests = %d, want 0", got)
	}
}

func TestWishlistToggle(t *testing.T) {
	b := setupCmdTest(t)
	signIn(t, b)
	b.reply(http.MethodGet, "/api/cart/wishlist", http.StatusOK, map[string]any{"items": []any{}})
	b.reply(http.MethodPost, "/api/cart/wishlist/toggle", http.StatusOK, map[string]bool{"inWishlist": true})
	b.reply(http.MethodGet, "/api/cart/counts", http.StatusOK, map[string]int{"cartCount": 0, "wishlistCount": 1})

	res := runCmd(t, "", "wishlist", "toggle", "p1")
	if res.err != nil {
		t.Fatalf("wishlist toggle failed: %v", res.err)
	}
	assertContains(t, res.stdout, "Saved p1 to your wishlist", "wishlist: 1")
}

func TestOrders_ListAndTrack(t *testing.T) {
	b := setupCmdTest(t)
	signIn(t, b)
	b.reply(http.MethodGet, "/api/orders/user", http.StatusOK, map[string]any{"orders": []map[string]any{
		{"id": "o1", "status": "Placed", "total": 450, "createdAt": "2026-01-01T10:00:00Z"},
		{"id": "o2", "status": "In Transit", "total": 900, "createdAt": "2026-02-01T10:00:00Z"},
	}})
	b.reply(http.MethodGet, "/api/orders/o2", http.StatusOK, map[string]any{"order": map[string]any{
		"id": "o2", "status": "Shipped", "total": 900, "awbCode": "AWB123",
	}})
	b.reply(http.MethodGet, "/shiprocket/track/AWB123", http.StatusOK, map[string]any{"tracking": map[string]any{
		"currentStatus": "IN TRANSIT",
		"courierName":   "Delhivery",
		"activities": []map[string]string{
			{"date": "2026-02-02", "status": "Picked", "activity": "Shipment picked up", "location": "Pune"},
		},
	}})

	res := runCmd(t, "", "orders", "list")
	if res.err != nil {
		t.Fatalf("orders list failed: %v", res.err)
	}
	if strings.Index(res.stdout, "o2") > strings.Index(res.stdout, "o1") {
		t.Errorf("newest order should be listed first:\n%s", res.stdout)
	}
	assertContains(t, res.stdout, "[In Transit]", "[Order Placed]")

	res = runCmd(t, "", "orders", "track", "o2")
	if res.err != nil {
		t.Fatalf("orders track failed: %v", res.err)
	}
	assertContains(t, res.stdout,
		"Courier: Delhivery (AWB AWB123)",
		"[x] Shipped",
		"[>] In Transit",
		"[ ] Out for Delivery",
		"60% complete",
		"Shipment picked up",
	)
}

func TestOrdersCancel_ShippedOrderIsRejected(t *testing.T) {
	b := setupCmdTest(t)
	signIn(t, b)
	b.reply(http.MethodGet, "/api/orders/o2", http.StatusOK, map[string]any{"order": map[string]any{"id": "o2", "status": "Shipped"}})

	res := runCmd(t, "", "orders", "cancel", "o2", "--yes")
	if got := res.exitCode(); got != output.ExitValidation {
		t.Errorf("exit code = %d, want %d", got, output.ExitValidation)
	}
	if got := b.hitCount(http.MethodPut, "/api/orders/cancel/o2"); got != 0 {
		t.Errorf("cancel requests = %d, want 0", got)
	}
}

func TestOrdersCancel(t *testing.T) {
	b := setupCmdTest(t)
	signIn(t, b)
	b.reply(http.MethodGet, "/api/orders/o1", http.StatusOK, map[string]any{"order": map[string]any{"id": "o1", "status": "Placed", "total": 450}})
	b.reply(http.MethodPut, "/api/orders/cancel/o1", http.StatusOK, map[string]any{"order": map[string]any{"id": "o1", "status": "Cancelled"}})

	res := runCmd(t, "y\n", "orders", "cancel", "o1")
	if res.err != nil {
		t.Fatalf("orders cancel failed: %v", res.err)
	}
	assertContains(t, res.stdout, "Order o1 is Cancelled")
}

func TestCheckout_PayAndVerify(t *testing.T) {
	b := setupCmdTest(t)
	t.Setenv("SHOPCTL_PAYMENT_PUBLIC_KEY", "rzp_test_key")
	signIn(t, b)
	b.reply(http.MethodGet, "/api/orders/o1", http.StatusOK, map[string]any{"order": map[string]any{"id": "o1", "status": "Placed", "total": 450}})
	b.reply(http.MethodPost, "/api/payments/create-order", http.StatusOK, map[string]any{
		"razorpayOrderId": "order_abc", "amount": 450, "currency": "INR",
	})
	b.reply(http.MethodPost, "/api/payments/verify", http.StatusOK, map[string]any{"success": true, "orderId": "o1"})

	res := runCmd(t, "", "checkout", "pay", "o1", "--yes")
	if res.err != nil {
		t.Fatalf("checkout pay failed: %v", res.err)
	}
	assertContains(t, res.stdout, "order_abc", "450.00 INR", "rzp_test_key")
	if key := b.lastRequest(http.MethodPost, "/api/payments/create-order").Header.Get(shop.IdempotencyHeader); key == "" {
		t.Error("create-order should carry an idempotency key")
	}

	if res := runCmd(t, "", "logout"); res.err != nil {
		t.Fatalf("logout failed: %v", res.err)
	}

	res = runCmd(t, "", "checkout", "verify", "--provider-order", "order_abc", "--payment", "pay_1", "--signature", "sig")
	if res.err != nil {
		t.Fatalf("checkout verify failed: %v", res.err)
	}
	assertContains(t, res.stdout, "Payment confirmed for order o1")
	if auth := b.lastRequest(http.MethodPost, "/api/payments/verify").Header.Get("Authorization"); auth != "" {
		t.Errorf("verify should be anonymous, got Authorization %q", auth)
	}
}

func TestCheckoutVerify_RejectedSignature(t *testing.T) {
	b := setupCmdTest(t)
	b.reply(http.MethodPost, "/api/payments/verify", http.StatusOK, map[string]any{"success": false, "message": "Invalid signature"})

	res := runCmd(t, "", "checkout", "verify", "--provider-order", "order_abc", "--payment", "pay_1", "--signature", "bad")
	if got := res.exitCode(); got != output.ExitValidation {
		t.Errorf("exit code = %d, want %d", got, output.ExitValidation)
	}
}

func TestBlogs_ListAndShow(t *testing.T) {
	b := setupCmdTest(t)
	b.reply(http.MethodGet, "/api/blogs/latest", http.StatusOK, map[string]any{"blogs": []map[string]string{
		{"id": "b1", "slug": "raw-honey", "title": "Why raw honey"},
	}})
	b.reply(http.MethodGet, "/api/blogs/raw-honey", http.StatusOK, map[string]any{"blog": map[string]string{
		"id": "b1", "slug": "raw-honey", "title": "Why raw honey", "author": "Asha",
		"content": "<p>Raw &amp; local</p><script>alert(1)</script>",
	}})

	res := runCmd(t, "", "blogs", "list")
	if res.err != nil {
		t.Fatalf("blogs list failed: %v", res.err)
	}
	assertContains(t, res.stdout, "raw-honey", "Why raw honey")

	res = runCmd(t, "", "blogs", "show", "raw-honey")
	if res.err != nil {
		t.Fatalf("blogs show failed: %v", res.err)
	}
	assertContains(t, res.stdout, "by Asha", "Raw & local")
	if strings.Contains(res.stdout, "alert") || strings.Contains(res.stdout, "<p>") {
		t.Errorf("markup leaked into output:\n%s", res.stdout)
	}
}

func TestShipments_CreateAndAWB(t *testing.T) {
	b := setupCmdTest(t)
	signIn(t, b)
	b.reply(http.MethodPost, "/shiprocket/create-order", http.StatusOK, map[string]string{"shipmentId": "s1"})
	b.reply(http.MethodPost, "/shiprocket/generate-awb", http.StatusOK, map[string]string{"awbCode": "AWB9", "courierName": "Bluedart"})
	b.reply(http.MethodPost, "/shiprocket/generate-manifest", http.StatusOK, map[string]string{"manifestUrl": "https://cdn.example.com/m.pdf"})

	res := runCmd(t, "", "shipments", "create", "o1")
	if res.err != nil {
		t.Fatalf("shipments create failed: %v", res.err)
	}
	assertContains(t, res.stdout, "Shipment s1 created for order o1")

	res = runCmd(t, "", "shipments", "awb", "s1")
	if res.err != nil {
		t.Fatalf("shipments awb failed: %v", res.err)
	}
	assertContains(t, res.stdout, "AWB AWB9 assigned to s1 via Bluedart")

	res = runCmd(t, "", "shipments", "manifest", "s1")
	if res.err != nil {
		t.Fatalf("shipments manifest failed: %v", res.err)
	}
	assertContains(t, res.stdout, "https://cdn.example.com/m.pdf")
}

func TestHome_HidesFailedBlogs(t *testing.T) {
	b := setupCmdTest(t)
	b.reply(http.MethodGet, "/api/products", http.StatusOK, map[string]any{"products": []any{honey}})
	b.reply(http.MethodGet, "/api/blogs/latest", http.StatusInternalServerError, map[string]string{"message": "down"})

	res := runCmd(t, "", "home")
	if res.err != nil {
		t.Fatalf("home failed: %v", res.err)
	}
	assertContains(t, res.stdout, "Featured", "Wild Honey")
	if strings.Contains(res.stdout, "From the blog") {
		t.Errorf("blog section should be hidden:\n%s", res.stdout)
	}
}

func TestQuietSuppressesInfo(t *testing.T) {
	b := setupCmdTest(t)
	signIn(t, b)

	res := runCmd(t, "", "--quiet", "logout")
	if res.err != nil {
		t.Fatalf("logout failed: %v", res.err)
	}
	if res.stdout != "" {
		t.Errorf("quiet output = %q, want empty", res.stdout)
	}
}

func TestHintsFollowSuccessfulCommands(t *testing.T) {
	b := setupCmdTest(t)
	b.reply(http.MethodGet, "/api/blogs/latest", http.StatusOK, map[string]any{"blogs": []map[string]string{
		{"id": "b1", "slug": "raw-honey", "title": "Why raw honey"},
	}})

	res := runCmd(t, "", "blogs", "list")
	if res.err != nil {
		t.Fatalf("blogs list failed: %v", res.err)
	}
	assertContains(t, res.stdout, "See also: shopctl blogs show <slug>")
}

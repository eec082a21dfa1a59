// storectl is a CLI tool for exercising a storefront API from the terminal.
// Each command performs a single operation, making it composable for scripts.
// Cart and wishlist cookies are kept in a file between invocations.
//
// Commands:
//
//	storectl catalog [-category SLUG] [-filter sale|featured|new] [-sort ORDER] [-search TEXT] [-min N] [-max N] [-page N]
//	storectl product -slug SLUG
//	storectl categories
//	storectl payment-methods
//	storectl cart [-add ID [-qty N]] [-set ID -qty N] [-remove ID] [-clear]
//	storectl checkout -first NAME -last NAME -phone PHONE -address ADDR -city CITY [-payment ID]
//
// Examples:
//
//	storectl catalog -api http://localhost:8080 -filter sale
//	storectl cart -add 60 -qty 2
//	ORDER=$(storectl checkout -first Aïcha -last Ba -phone 22334455 -address "Ilot K" -city Nouakchott -q)
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"storefront/internal/catalog"
)

var client = &http.Client{Timeout: 30 * time.Second}

// Global flags (apply to all commands)
var (
	apiURL     string
	cookieFile string
	quiet      bool
	noColor    bool
	verbose    bool
)

// State cookies kept between invocations.
var stateCookies = []string{"storefront_cart", "storefront_wishlist"}

// ANSI color codes
var (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

func init() {
	if os.Getenv("NO_COLOR") != "" {
		disableColors()
	}
}

func disableColors() {
	colorReset, colorRed, colorGreen, colorYellow = "", "", "", ""
	colorBlue, colorCyan, colorGray, colorBold = "", "", "", ""
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "catalog":
		runCatalog(args)
	case "product":
		runProduct(args)
	case "categories":
		runCategories(args)
	case "payment-methods":
		runPaymentMethods(args)
	case "cart":
		runCart(args)
	case "checkout":
		runCheckout(args)
	case "-h", "-help", "--help", "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `storectl - storefront API tool

Usage:
  storectl <command> [options]

Commands:
  catalog          List a catalog page
  product          Show a product and its related products
  categories       List categories, with the category cache status
  payment-methods  List the payment methods offered at checkout
  cart             Show or change the cart
  checkout         Place an order for the cart

Examples:
  # Products on sale, cheapest first
  storectl catalog -filter sale -sort price-asc

  # Fill the cart and check out
  storectl cart -add 60 -qty 2
  storectl checkout -first Aïcha -last Ba -phone 22334455 -address "Ilot K" -city Nouakchott

Run 'storectl <command> -h' for command-specific options.
`)
}

// newFlagSet registers the options every command shares.
func newFlagSet(name, usage string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.StringVar(&apiURL, "api", envOr("STOREFRONT_URL", "http://localhost:8080"), "Storefront base URL")
	fs.StringVar(&cookieFile, "cookies", ".storectl-cookies.json", "File keeping cart and wishlist cookies")
	fs.BoolVar(&quiet, "q", false, "Quiet mode - only output the essential value")
	fs.BoolVar(&noColor, "no-color", false, "Disable colored output")
	fs.BoolVar(&verbose, "v", false, "Verbose - show full request/response")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: storectl %s\n\nOptions:\n", usage)
		fs.PrintDefaults()
	}
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) {
	fs.Parse(args)
	if noColor {
		disableColors()
	}
	apiURL = strings.TrimSuffix(apiURL, "/")
}

// =============================================================================
// CATALOG COMMANDS
// =============================================================================

func runCatalog(args []string) {
	fs := newFlagSet("catalog", "catalog [options]")
	var category, filter, sort, search string
	var page, minPrice, maxPrice int
	fs.StringVar(&category, "category", "", "Category slug")
	fs.StringVar(&filter, "filter", "", "Filter: sale, featured, new")
	fs.StringVar(&sort, "sort", "", "Sort: price-asc, price-desc, name-asc, name-desc, date-desc")
	fs.StringVar(&search, "search", "", "Free-text search")
	fs.IntVar(&page, "page", 0, "Page number")
	fs.IntVar(&minPrice, "min", 0, "Minimum price")
	fs.IntVar(&maxPrice, "max", catalog.PriceCeiling, "Maximum price")
	parseFlags(fs, args)

	q := url.Values{}
	for key, val := range map[string]string{"category": category, "filter": filter, "sort": sort, "search": search} {
		if val != "" {
			q.Set(key, val)
		}
	}
	q = catalog.UpdateFilters(q, catalog.PriceChanges(minPrice, maxPrice))
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	path := "/api/catalog"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out struct {
		Products []product `json:"products"`
		Title    string    `json:"title"`
		Page     int       `json:"page"`
		HasMore  bool      `json:"has_more"`
		NextPage string    `json:"next_page"`
		Notice   string    `json:"notice"`
	}
	resp, err := doRequest("GET", path, nil, &out)
	if err != nil {
		fatal("Failed to load catalog: %v", err)
	}

	if quiet {
		for _, p := range out.Products {
			fmt.Println(p.Slug)
		}
		return
	}
	printCacheStatus(resp)
	if out.Notice != "" {
		printWarning("%s", out.Notice)
	}
	printSuccess("%s - page %d, %d products", out.Title, out.Page, len(out.Products))
	for _, p := range out.Products {
		printProduct(p)
	}
	if out.HasMore {
		printInfo("More: %s", out.NextPage)
	}
}

func runProduct(args []string) {
	fs := newFlagSet("product", "product -slug SLUG [options]")
	var slug string
	fs.StringVar(&slug, "slug", "", "Product slug (required)")
	parseFlags(fs, args)

	if slug == "" {
		fs.Usage()
		os.Exit(1)
	}

	var out struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Data    *struct {
			Product *product  `json:"product"`
			Related []product `json:"related"`
		} `json:"data"`
	}
	if _, err := doRequest("GET", "/api/products/"+url.PathEscape(slug), nil, &out); err != nil {
		fatal("Failed to load product: %v", err)
	}
	if !out.Success || out.Data == nil || out.Data.Product == nil {
		fatal("Product unavailable: %s", out.Message)
	}

	p := out.Data.Product
	if quiet {
		fmt.Println(p.ID)
		return
	}
	printSuccess("Product found")
	printProduct(*p)
	if len(out.Data.Related) > 0 {
		fmt.Printf("  %sRelated:%s\n", colorYellow, colorReset)
		for _, r := range out.Data.Related {
			printProduct(r)
		}
	}
}

func runCategories(args []string) {
	fs := newFlagSet("categories", "categories [options]")
	parseFlags(fs, args)

	var out struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Data    []struct {
			ID    int    `json:"id"`
			Name  string `json:"name"`
			Slug  string `json:"slug"`
			Count int    `json:"count"`
		} `json:"data"`
	}
	resp, err := doRequest("GET", "/api/categories", nil, &out)
	if err != nil {
		fatal("Failed to list categories: %v", err)
	}

	if quiet {
		for _, c := range out.Data {
			fmt.Println(c.Slug)
		}
		return
	}
	printCacheStatus(resp)
	if !out.Success {
		printWarning("%s", out.Message)
	}
	for _, c := range out.Data {
		fmt.Printf("  %s%-24s%s %s (%d products, id %d)\n", colorCyan, c.Slug, colorReset, c.Name, c.Count, c.ID)
	}
}

func runPaymentMethods(args []string) {
	fs := newFlagSet("payment-methods", "payment-methods [options]")
	parseFlags(fs, args)

	var out struct {
		Methods []struct {
			ID          string `json:"id"`
			Title       string `json:"title"`
			Description string `json:"description"`
		} `json:"methods"`
		Degraded bool   `json:"degraded"`
		Message  string `json:"message"`
		Default  string `json:"default"`
	}
	if _, err := doRequest("GET", "/api/payment-methods", nil, &out); err != nil {
		fatal("Failed to list payment methods: %v", err)
	}

	if quiet {
		fmt.Println(out.Default)
		return
	}
	if out.Degraded {
		printWarning("Fallback list: %s", out.Message)
	}
	for _, m := range out.Methods {
		marker := " "
		if m.ID == out.Default {
			marker = "*"
		}
		fmt.Printf("  %s %s%s%s %s\n", marker, colorCyan, m.ID, colorReset, m.Title)
	}
}

// =============================================================================
// CART AND CHECKOUT COMMANDS
// =============================================================================

func runCart(args []string) {
	fs := newFlagSet("cart", "cart [-add ID [-qty N]] [-set ID -qty N] [-remove ID] [-clear] [options]")
	var add, set, remove, qty int
	var clear bool
	fs.IntVar(&add, "add", 0, "Add product ID to the cart")
	fs.IntVar(&set, "set", 0, "Set the quantity of product ID")
	fs.IntVar(&remove, "remove", 0, "Remove product ID from the cart")
	fs.IntVar(&qty, "qty", 1, "Quantity (with -add or -set)")
	fs.BoolVar(&clear, "clear", false, "Empty the cart")
	parseFlags(fs, args)

	var (
		method = "GET"
		path   = "/api/cart"
		body   any
	)
	switch {
	case add > 0:
		method, path = "POST", "/api/cart/items"
		body = map[string]int{"productId": add, "quantity": qty}
	case set > 0:
		method, path = "PUT", "/api/cart/items/"+strconv.Itoa(set)
		body = map[string]int{"quantity": qty}
	case remove > 0:
		method, path = "DELETE", "/api/cart/items/"+strconv.Itoa(remove)
	case clear:
		method = "DELETE"
	}

	var view struct {
		Items []struct {
			ID        int    `json:"id"`
			Name      string `json:"name"`
			Quantity  int    `json:"quantity"`
			LineTotal string `json:"lineTotal"`
		} `json:"items"`
		ItemCount int    `json:"itemCount"`
		Subtotal  string `json:"subtotal"`
	}
	if _, err := doRequest(method, path, body, &view); err != nil {
		fatal("Cart request failed: %v", err)
	}

	if quiet {
		fmt.Println(view.ItemCount)
		return
	}
	printSuccess("Cart: %d items, subtotal %s", view.ItemCount, view.Subtotal)
	for _, it := range view.Items {
		fmt.Printf("  %s%d%s x %d %s (%s)\n", colorCyan, it.ID, colorReset, it.Quantity, it.Name, it.LineTotal)
	}
}

func runCheckout(args []string) {
	fs := newFlagSet("checkout", "checkout -first NAME -last NAME -phone PHONE -address ADDR -city CITY [options]")
	form := map[string]*string{}
	for _, f := range []struct{ flag, field, usage string }{
		{"first", "firstName", "First name"},
		{"last", "lastName", "Last name"},
		{"email", "email", "Email"},
		{"phone", "phone", "Phone number"},
		{"address", "address", "Street address"},
		{"city", "city", "City"},
		{"country", "country", "ISO country code"},
		{"notes", "notes", "Delivery notes"},
		{"payment", "paymentMethod", "Payment method ID (defaults to the store default)"},
	} {
		form[f.field] = fs.String(f.flag, "", f.usage)
	}
	parseFlags(fs, args)

	body := make(map[string]string, len(form))
	for field, val := range form {
		if *val != "" {
			body[field] = *val
		}
	}

	var out struct {
		Success bool     `json:"success"`
		Message string   `json:"message"`
		Missing []string `json:"missing"`
		Order   *struct {
			ID                 int    `json:"id"`
			Number             string `json:"number"`
			Status             string `json:"status"`
			Total              string `json:"total"`
			Currency           string `json:"currency"`
			PaymentMethodTitle string `json:"payment_method_title"`
			Reference          string `json:"reference"`
		} `json:"order"`
	}
	_, err := doRequest("POST", "/api/checkout", body, &out)
	if err != nil && out.Message == "" {
		fatal("Checkout failed: %v", err)
	}
	if !out.Success || out.Order == nil {
		if len(out.Missing) > 0 {
			fatal("%s: %s", out.Message, strings.Join(out.Missing, ", "))
		}
		fatal("%s", out.Message)
	}

	o := out.Order
	if quiet {
		fmt.Println(o.ID)
		return
	}
	printSuccess("Order placed")
	fmt.Printf("  Order: %s#%s%s (id %d, %s)\n", colorGreen, o.Number, colorReset, o.ID, o.Status)
	fmt.Printf("  Total: %s%s %s%s\n", colorGreen, o.Total, o.Currency, colorReset)
	fmt.Printf("  Payment: %s\n", o.PaymentMethodTitle)
	if o.Reference != "" {
		fmt.Printf("  Reference: %s%s%s\n", colorBlue, o.Reference, colorReset)
	}
}

// =============================================================================
// HTTP HELPERS
// =============================================================================

// doRequest sends one request with the saved state cookies, stores any
// cookies the server sets, and decodes the JSON body into out. Error
// responses are still decoded so envelope messages reach the caller.
func doRequest(method, path string, body, out any) (*http.Response, error) {
	var reqBody io.Reader
	var reqJSON []byte

	if body != nil {
		var err error
		reqJSON, err = json.MarshalIndent(body, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshaling request: %w", err)
		}
		reqBody = bytes.NewReader(reqJSON)
	}

	req, err := http.NewRequest(method, apiURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for _, c := range loadCookies() {
		req.AddCookie(c)
	}

	if !quiet {
		printRequest(method, path, reqJSON)
	}

	start := time.Now()
	resp, err := client.Do(req)
	duration := time.Since(start)

	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp, fmt.Errorf("reading response: %w", err)
	}

	if !quiet {
		printResponse(resp.StatusCode, respBody, duration)
	}

	if err := saveCookies(resp.Cookies()); err != nil {
		printWarning("Could not save cookies: %v", err)
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil && resp.StatusCode < 400 {
			return resp, fmt.Errorf("parsing response: %w", err)
		}
	}
	if resp.StatusCode >= 400 {
		return resp, fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	return resp, nil
}

// loadCookies reads the saved state cookies. A missing file means none.
func loadCookies() []*http.Cookie {
	data, err := os.ReadFile(cookieFile)
	if err != nil {
		return nil
	}
	var saved map[string]string
	if err := json.Unmarshal(data, &saved); err != nil {
		return nil
	}
	cookies := make([]*http.Cookie, 0, len(saved))
	for _, name := range stateCookies {
		if v := saved[name]; v != "" {
			cookies = append(cookies, &http.Cookie{Name: name, Value: v})
		}
	}
	return cookies
}

// saveCookies merges state cookies from a response into the cookie file.
// A cookie the server expires is dropped.
func saveCookies(set []*http.Cookie) error {
	saved := map[string]string{}
	if data, err := os.ReadFile(cookieFile); err == nil {
		json.Unmarshal(data, &saved)
	}

	changed := false
	for _, c := range set {
		if !isStateCookie(c.Name) {
			continue
		}
		changed = true
		if c.MaxAge < 0 || c.Value == "" {
			delete(saved, c.Name)
			continue
		}
		saved[c.Name] = c.Value
	}
	if !changed {
		return nil
	}

	data, err := json.MarshalIndent(saved, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(cookieFile, data, 0o600)
}

func isStateCookie(name string) bool {
	for _, n := range stateCookies {
		if n == name {
			return true
		}
	}
	return false
}

func envOr(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

// =============================================================================
// OUTPUT HELPERS
// =============================================================================

// product holds the fields storectl prints.
type product struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	Price        string `json:"price"`
	RegularPrice string `json:"regular_price"`
	SalePrice    string `json:"sale_price"`
	OnSale       bool   `json:"on_sale"`
	StockStatus  string `json:"stock_status"`
}

func printProduct(p product) {
	price := p.Price
	if p.OnSale && p.SalePrice != "" {
		price = fmt.Sprintf("%s %s(was %s)%s", p.SalePrice, colorGray, p.RegularPrice, colorReset)
	}
	stock := ""
	if p.StockStatus != "" && p.StockStatus != "instock" {
		stock = fmt.Sprintf(" %s[%s]%s", colorRed, p.StockStatus, colorReset)
	}
	fmt.Printf("  %s%5d%s %s - %s%s\n", colorCyan, p.ID, colorReset, p.Name, price, stock)
}

func printCacheStatus(resp *http.Response) {
	if resp == nil {
		return
	}
	entries, err := parseCacheStatus(resp.Header.Values("Cache-Status"))
	if err != nil {
		printWarning("%v", err)
		return
	}
	for _, e := range entries {
		printInfo("Cache: %s", e)
	}
}

func printRequest(method, path string, body []byte) {
	if !verbose {
		return
	}
	fmt.Printf("\n%s▶ REQUEST%s %s%s %s%s\n", colorYellow, colorReset, colorBold, method, path, colorReset)
	if body != nil {
		printJSON(body, "  ")
	}
}

func printResponse(status int, body []byte, duration time.Duration) {
	if !verbose {
		return
	}
	statusColor := colorGreen
	if status >= 400 {
		statusColor = colorRed
	}
	fmt.Printf("\n%s◀ RESPONSE%s %s%d%s (%v)\n", colorCyan, colorReset, statusColor, status, colorReset, duration)
	printJSON(body, "  ")
}

func printJSON(data []byte, prefix string) {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, data, prefix, "  "); err != nil {
		fmt.Printf("%s%s\n", prefix, string(data))
		return
	}
	fmt.Println(pretty.String())
}

func printSuccess(format string, args ...interface{}) {
	if !quiet {
		fmt.Printf("%s✓ %s%s\n", colorGreen, fmt.Sprintf(format, args...), colorReset)
	}
}

func printWarning(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "%s⚠ %s%s\n", colorYellow, fmt.Sprintf(format, args...), colorReset)
}

func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Printf("%s→ %s%s\n", colorGray, fmt.Sprintf(format, args...), colorReset)
	}
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "%s✗ %s%s\n", colorRed, fmt.Sprintf(format, args...), colorReset)
	os.Exit(1)
}

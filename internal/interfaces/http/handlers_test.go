package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/tienda-erp-api/internal/application/auth"
	"github.com/jhoicas/tienda-erp-api/internal/application/dto"
	"github.com/jhoicas/tienda-erp-api/internal/application/fakes"
	"github.com/jhoicas/tienda-erp-api/internal/application/payments"
	"github.com/jhoicas/tienda-erp-api/internal/application/ports"
	"github.com/jhoicas/tienda-erp-api/internal/application/pricing"
	"github.com/jhoicas/tienda-erp-api/internal/application/sales"
	"github.com/jhoicas/tienda-erp-api/internal/domain/entity"
	apphttp "github.com/jhoicas/tienda-erp-api/internal/interfaces/http"
)

const (
	productID   = "11111111-1111-4111-8111-111111111111"
	warehouseID = "22222222-2222-4222-8222-222222222222"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type apiFixture struct {
	app     *fiber.App
	store   *fakes.Store
	gateway *fakes.PaymentGateway
	emails  *fakes.EmailQueue
}

// newAPI arma el router completo sobre los repositorios en memoria.
// Siembra un producto con 13 unidades en dos lotes, una venta online pendiente y dos listas.
func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	s := fakes.NewStore()
	t0 := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	s.AddWarehouse(&entity.Warehouse{ID: warehouseID, Name: "Central", IsDefault: true})
	s.AddProduct(&entity.Product{
		ID: productID, SKU: "CR-01", Name: "Crema facial", Active: true,
		PricePublic: d("1000"), PriceRetail: d("800"), PriceWholesale: d("600"),
	})
	s.AddLot(&entity.Lot{ID: "l1", ProductID: productID, WarehouseID: warehouseID, InitialQty: d("10"), CurrentQty: d("10"), CreatedAt: t0})
	s.AddLot(&entity.Lot{ID: "l2", ProductID: productID, WarehouseID: warehouseID, InitialQty: d("3"), CurrentQty: d("3"), CreatedAt: t0.Add(time.Hour)})
	s.AddSale(&entity.Sale{
		ID: "venta-1", Channel: entity.ChannelOnline, Status: entity.SaleStatusPending,
		CustomerEmail: "cliente@example.com", Subtotal: d("1500"), Total: d("1500"),
		Items: []entity.SaleItem{{ID: "i1", SaleID: "venta-1", ProductID: productID, ProductName: "Crema facial", LotID: "l1", Quantity: d("1"), UnitPrice: d("1500")}},
	})
	s.AddPriceList(&entity.PriceList{ID: "pub", Name: "Revendedores", Public: true}, map[string]decimal.Decimal{productID: d("850")})
	s.AddPriceList(&entity.PriceList{ID: "priv", Name: "Interna", Public: false}, nil)

	hash, err := bcrypt.GenerateFromPassword([]byte("secreto-123"), bcrypt.MinCost)
	require.NoError(t, err)
	s.AddUser(&entity.User{ID: testUserID, Email: "admin@tienda.test", PasswordHash: string(hash), Roles: []string{entity.RoleAdmin}, Status: "active"})

	approvedAt := time.Date(2024, 5, 2, 15, 4, 0, 0, time.UTC)
	gw := fakes.NewPaymentGateway()
	gw.Payments["pay-1"] = &ports.Payment{
		ID: "pay-1", Status: ports.PaymentStatusApproved, ExternalReference: "venta-1",
		Amount: d("1500"), Currency: "ARS", PayerEmail: "pagador@example.com", ApprovedAt: &approvedAt,
	}
	emails := &fakes.EmailQueue{}

	saleRepo := fakes.NewSaleRepo(s)
	productRepo := fakes.NewProductRepo(s)
	priceListRepo := fakes.NewPriceListRepo(s)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:      auth.NewAuthUseCase(fakes.NewUserRepo(s), fakes.NewAccessRequestRepo(s), auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: 60, Issuer: testIssuer}, nil),
		CreateSale:  sales.NewCreateSaleUseCase(fakes.NewTxRunner(s), productRepo, priceListRepo, nil),
		SaleUC:      sales.NewSaleUseCase(saleRepo, nil, nil),
		PriceListUC: pricing.NewPriceListUseCase(priceListRepo, productRepo, nil, nil),
		PortalUC:    pricing.NewPortalUseCase(priceListRepo, productRepo, nil, nil, nil),
		CheckoutUC:  payments.NewCheckoutUseCase(saleRepo, gw, nil),
		WebhookUC:   payments.NewWebhookUseCase(saleRepo, gw, nil, emails, nil),
		JWTSecret:   testJWTSecret,
	})
	return &apiFixture{app: app, store: s, gateway: gw, emails: emails}
}

func (f *apiFixture) do(t *testing.T, method, path string, body interface{}, authHeader string) (*http.Response, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]interface{}{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

// ──────────────────────────────────────────────────────────────────────────────
// Auth
// ──────────────────────────────────────────────────────────────────────────────

func TestLogin_DevuelveTokenConRoles(t *testing.T) {
	f := newAPI(t)

	resp, body := f.do(t, http.MethodPost, "/api/auth/login", dto.LoginRequest{Email: "Admin@Tienda.test", Password: "secreto-123"}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, body["token"])

	// El token emitido sirve para las rutas protegidas.
	resp, me := f.do(t, http.MethodGet, "/api/auth/me", nil, "Bearer "+body["token"].(string))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "admin@tienda.test", me["email"])
}

func TestLogin_CredencialesIncorrectas(t *testing.T) {
	f := newAPI(t)

	resp, body := f.do(t, http.MethodPost, "/api/auth/login", dto.LoginRequest{Email: "admin@tienda.test", Password: "otra-clave"}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "INVALID_CREDENTIALS", body["code"])

	resp, body = f.do(t, http.MethodPost, "/api/auth/login", dto.LoginRequest{Email: "nadie@tienda.test", Password: "otra-clave"}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "usuario inexistente responde igual que clave incorrecta")
	assert.Equal(t, "INVALID_CREDENTIALS", body["code"])
}

func TestRutaProtegida_SinToken(t *testing.T) {
	f := newAPI(t)

	resp, _ := f.do(t, http.MethodGet, "/api/sales", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Ventas
// ──────────────────────────────────────────────────────────────────────────────

func saleBody(qty string) map[string]interface{} {
	return map[string]interface{}{
		"customer_name": "Consumidor final",
		"items":         []map[string]interface{}{{"product_id": productID, "quantity": qty}},
	}
}

func TestCrearVenta_VendedorDescuentaStock(t *testing.T) {
	f := newAPI(t)

	resp, body := f.do(t, http.MethodPost, "/api/sales", saleBody("11"), tokenForRoles(t, "vendedor"))
	require.Equal(t, http.StatusCreated, resp.StatusCode, "respuesta: %v", body)

	assert.Equal(t, entity.SaleStatusPaid, body["status"], "una venta local nace pagada")
	assert.Equal(t, "11000", body["total"])
	items, ok := body["items"].([]interface{})
	require.True(t, ok)
	assert.Len(t, items, 2, "11 unidades consumen el lote de 10 y 1 del siguiente")
	assert.True(t, f.store.ProductStock(productID).Equal(d("2")))
}

func TestCrearVenta_StockInsuficiente(t *testing.T) {
	f := newAPI(t)

	resp, body := f.do(t, http.MethodPost, "/api/sales", saleBody("100"), tokenForRoles(t, "admin"))
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", body["code"])

	details, ok := body["details"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "13", details["available"])
	assert.Equal(t, "100", details["requested"])
	assert.True(t, f.store.ProductStock(productID).Equal(d("13")), "no debe descontarse nada")
}

func TestCrearVenta_ValidacionDeCampos(t *testing.T) {
	f := newAPI(t)

	resp, body := f.do(t, http.MethodPost, "/api/sales", saleBody("0"), tokenForRoles(t, "vendedor"))
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "VALIDATION", body["code"])

	details, ok := body["details"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "gt", details["items[0].quantity"])
}

func TestCrearVenta_CuerpoInvalido(t *testing.T) {
	f := newAPI(t)

	resp, body := f.do(t, http.MethodPost, "/api/sales", "{no es json", tokenForRoles(t, "vendedor"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_BODY", body["code"])
}

func TestCrearVenta_BodegueroNoPuedeVender(t *testing.T) {
	f := newAPI(t)

	resp, _ := f.do(t, http.MethodPost, "/api/sales", saleBody("1"), tokenForRoles(t, "bodeguero"))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, 1, f.store.SaleCount(), "solo la venta sembrada")
}

func TestEliminarVenta_ProcedimientoFaltanteDevuelveRemedio(t *testing.T) {
	f := newAPI(t)
	f.store.DeleteProcedureMissing = true

	resp, body := f.do(t, http.MethodDelete, "/api/sales/venta-1", nil, tokenForRoles(t, "admin"))
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "PROCEDURE_NOT_FOUND", body["code"])
	assert.Contains(t, body["remedy"], "CREATE OR REPLACE FUNCTION restore_stock_and_delete_sale")
}

func TestActualizarEstado_FueraDelConjunto(t *testing.T) {
	f := newAPI(t)

	resp, body := f.do(t, http.MethodPatch, "/api/sales/venta-1/status", dto.UpdateSaleStatusRequest{Status: "Perdida"}, tokenForRoles(t, "vendedor"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_INPUT", body["code"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Pagos
// ──────────────────────────────────────────────────────────────────────────────

func TestCheckout_DevuelveInitPoint(t *testing.T) {
	f := newAPI(t)

	resp, body := f.do(t, http.MethodPost, "/api/sales/venta-1/checkout", nil, tokenForRoles(t, "vendedor"))
	require.Equal(t, http.StatusOK, resp.StatusCode, "respuesta: %v", body)
	assert.Equal(t, "https://checkout.example/pref-1", body["init_point"])
}

func TestWebhook_PagoAprobadoMarcaVentaYEncolaEmail(t *testing.T) {
	f := newAPI(t)

	resp, _ := f.do(t, http.MethodPost, "/api/webhooks/mercadopago",
		map[string]interface{}{"type": "payment", "data": map[string]string{"id": "pay-1"}}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, entity.SaleStatusPaid, f.store.Sale("venta-1").Status)
	assert.Len(t, f.emails.Sent, 1)

	// Reintento del proveedor: 200 y sin segundo email.
	resp, _ = f.do(t, http.MethodPost, "/api/webhooks/mercadopago",
		map[string]interface{}{"type": "payment", "data": map[string]string{"id": "pay-1"}}, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, f.emails.Sent, 1)
}

func TestWebhook_FormatoQueryString(t *testing.T) {
	f := newAPI(t)

	resp, _ := f.do(t, http.MethodPost, "/api/webhooks/mercadopago?topic=payment&id=pay-1", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, entity.SaleStatusPaid, f.store.Sale("venta-1").Status)
}

func TestWebhook_SiempreResponde200(t *testing.T) {
	cases := []struct {
		name string
		body interface{}
	}{
		{"evento desconocido", map[string]interface{}{"type": "merchant_order", "data": map[string]string{"id": "mo-1"}}},
		{"pago inexistente", map[string]interface{}{"type": "payment", "data": map[string]string{"id": "nope"}}},
		{"cuerpo ilegible", "{{{"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newAPI(t)
			resp, _ := f.do(t, http.MethodPost, "/api/webhooks/mercadopago", tc.body, "")
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, entity.SaleStatusPending, f.store.Sale("venta-1").Status)
			assert.Empty(t, f.emails.Sent)
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Portal público
// ──────────────────────────────────────────────────────────────────────────────

func TestPortal_PublicoSinToken(t *testing.T) {
	f := newAPI(t)

	resp, body := f.do(t, http.MethodGet, "/api/portal/price-lists/pub?q=CREMA", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items, ok := body["items"].([]interface{})
	require.True(t, ok)
	require.Len(t, items, 1)
	item := items[0].(map[string]interface{})
	assert.Equal(t, "850", item["price"])
	assert.Equal(t, true, item["in_stock"])
}

func TestPortal_ListaPrivadaNoExiste(t *testing.T) {
	f := newAPI(t)

	resp, body := f.do(t, http.MethodGet, "/api/portal/price-lists/priv", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", body["code"])
}

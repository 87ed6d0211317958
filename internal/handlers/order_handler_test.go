package handlers_test

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Keoroanthony/go-storefront/internal/events"
	"github.com/Keoroanthony/go-storefront/internal/models"
	"github.com/Keoroanthony/go-storefront/internal/testutil"
)

func TestCheckoutHandler(t *testing.T) {
	s := setupStorefront(t)

	category := testutil.CreateCategory(t, s.db, "computers")
	laptop := testutil.CreateProduct(t, s.db, category, "laptop", "499.00")
	method := testutil.CreatePaymentMethod(t, s.db, "Store UPI", models.PaymentMethodUPI)
	customer := testutil.CreateCustomer(t, s.db, "test@example.com", false)
	custID := customer.ID
	cookie := sessionCookie(&custID, "checkout-cart")

	checkoutForm := map[string]any{
		"full_name":                "Test Customer",
		"phone":                    "9999999999",
		"address_line1":            "1 MG Road",
		"city":                     "Pune",
		"state":                    "MH",
		"pincode":                  "411001",
		"manual_payment_method_id": method.ID,
	}

	t.Run("Returns 401 without a customer in session", func(t *testing.T) {
		recorder := s.json(http.MethodPost, "/orders/checkout", checkoutForm, sessionCookie(nil, "checkout-cart"))
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)

		var response map[string]string
		decode(t, recorder, &response)
		assert.Equal(t, "unauthorized", response["error"])
	})

	t.Run("Empty cart redirects to the cart", func(t *testing.T) {
		recorder := s.json(http.MethodPost, "/orders/checkout", checkoutForm, cookie)
		assert.Equal(t, http.StatusSeeOther, recorder.Code)
		assert.Equal(t, "/cart", recorder.Header().Get("Location"))

		recorder = s.json(http.MethodGet, "/orders/checkout", nil, cookie)
		assert.Equal(t, http.StatusSeeOther, recorder.Code)
	})

	require.Equal(t, http.StatusOK, s.form(fmt.Sprintf("/cart/add/%d", laptop.ID), url.Values{"quantity": {"2"}}, cookie).Code)

	t.Run("Preview prices the cart", func(t *testing.T) {
		recorder := s.json(http.MethodGet, "/orders/checkout", nil, cookie)
		require.Equal(t, http.StatusOK, recorder.Code)

		var preview struct {
			Total          string `json:"total"`
			PaymentOptions []struct {
				Label string `json:"label"`
			} `json:"payment_options"`
		}
		decode(t, recorder, &preview)
		assert.Equal(t, "998", preview.Total)
		require.Len(t, preview.PaymentOptions, 1)
		assert.Equal(t, "Store UPI (store@upi)", preview.PaymentOptions[0].Label)
	})

	t.Run("Invalid form is 422 with field errors", func(t *testing.T) {
		bad := map[string]any{"full_name": "", "manual_payment_method_id": 9999}
		recorder := s.json(http.MethodPost, "/orders/checkout", bad, cookie)
		require.Equal(t, http.StatusUnprocessableEntity, recorder.Code)

		var response struct {
			Errors map[string]string `json:"errors"`
		}
		decode(t, recorder, &response)
		assert.Contains(t, response.Errors, "full_name")
		assert.Equal(t, "Select a valid payment option.", response.Errors["manual_payment_method_id"])
	})

	t.Run("Places the order", func(t *testing.T) {
		recorder := s.json(http.MethodPost, "/orders/checkout", checkoutForm, cookie)
		require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

		var response struct {
			Message    string       `json:"message"`
			Order      models.Order `json:"order"`
			PaymentURL string       `json:"payment_url"`
		}
		decode(t, recorder, &response)
		assert.Equal(t, "order created successfully", response.Message)
		assert.Equal(t, models.OrderStatusPendingPayment, response.Order.Status)
		assert.Len(t, response.Order.OrderCode, 12)
		require.Len(t, response.Order.Items, 1)
		assert.EqualValues(t, 2, response.Order.Items[0].Quantity)
		assert.Equal(t, fmt.Sprintf("/payments/manual/%d", response.Order.ID), response.PaymentURL)
		assert.Len(t, s.captured.Named(events.OrderPlaced), 1)

		var count int64
		s.db.Model(&models.Order{}).Where("customer_id = ?", customer.ID).Count(&count)
		assert.EqualValues(t, 1, count)

		cartRecorder := s.json(http.MethodGet, "/cart", nil, cookie)
		var cartResponse struct {
			Count int `json:"count"`
		}
		decode(t, cartRecorder, &cartResponse)
		assert.Zero(t, cartResponse.Count)
	})
}

func TestOrderViews(t *testing.T) {
	s := setupStorefront(t)

	owner := testutil.CreateCustomer(t, s.db, "owner@example.com", false)
	stranger := testutil.CreateCustomer(t, s.db, "stranger@example.com", false)
	pending := testutil.CreateOrder(t, s.db, owner, "000000000001", models.OrderStatusPendingPayment, "250.00")
	shipped := testutil.CreateOrder(t, s.db, owner, "000000000002", models.OrderStatusShipped, "400.00")

	ownerID, strangerID := owner.ID, stranger.ID
	ownerCookie := sessionCookie(&ownerID, "")
	strangerCookie := sessionCookie(&strangerID, "")

	t.Run("Lists own orders", func(t *testing.T) {
		recorder := s.json(http.MethodGet, "/orders", nil, ownerCookie)
		require.Equal(t, http.StatusOK, recorder.Code)
		var response struct {
			Orders []models.Order `json:"orders"`
		}
		decode(t, recorder, &response)
		assert.Len(t, response.Orders, 2)

		recorder = s.json(http.MethodGet, "/orders", nil, strangerCookie)
		decode(t, recorder, &response)
		assert.Empty(t, response.Orders)
	})

	t.Run("Detail carries tracking", func(t *testing.T) {
		recorder := s.json(http.MethodGet, fmt.Sprintf("/orders/%d", shipped.ID), nil, ownerCookie)
		require.Equal(t, http.StatusOK, recorder.Code)

		var response struct {
			StatusLabel string `json:"status_label"`
			Tracking    []struct {
				Value   string `json:"value"`
				Done    bool   `json:"done"`
				Current bool   `json:"current"`
			} `json:"tracking"`
		}
		decode(t, recorder, &response)
		assert.Equal(t, "Shipped", response.StatusLabel)
		for _, step := range response.Tracking {
			if step.Value == string(models.OrderStatusShipped) {
				assert.True(t, step.Current)
			}
			if step.Value == string(models.OrderStatusDelivered) {
				assert.False(t, step.Done)
			}
		}
	})

	t.Run("Another customer's order is 404", func(t *testing.T) {
		recorder := s.json(http.MethodGet, fmt.Sprintf("/orders/%d", shipped.ID), nil, strangerCookie)
		assert.Equal(t, http.StatusNotFound, recorder.Code)

		recorder = s.json(http.MethodGet, fmt.Sprintf("/payments/manual/%d", pending.ID), nil, strangerCookie)
		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})

	t.Run("Thank-you waits for payment", func(t *testing.T) {
		recorder := s.json(http.MethodGet, fmt.Sprintf("/orders/%d/thank-you", pending.ID), nil, ownerCookie)
		assert.Equal(t, http.StatusSeeOther, recorder.Code)
		assert.Equal(t, fmt.Sprintf("/orders/%d", pending.ID), recorder.Header().Get("Location"))

		recorder = s.json(http.MethodGet, fmt.Sprintf("/orders/%d/thank-you", shipped.ID), nil, ownerCookie)
		assert.Equal(t, http.StatusOK, recorder.Code)
	})
}

func proofForm(t *testing.T, reference string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("manual_reference", reference))
	part, err := mw.CreateFormFile("manual_proof", "receipt.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("\x89PNG\r\n\x1a\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func storedProofs(t *testing.T, s storefront) int {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(s.media, "payment_proofs"))
	if os.IsNotExist(err) {
		return 0
	}
	require.NoError(t, err)
	return len(entries)
}

func TestManualPaymentHandlers(t *testing.T) {
	s := setupStorefront(t)

	customer := testutil.CreateCustomer(t, s.db, "payer@example.com", false)
	method := testutil.CreatePaymentMethod(t, s.db, "Scan to pay", models.PaymentMethodQR)
	order := testutil.CreateOrder(t, s.db, customer, "000000000007", models.OrderStatusPendingPayment, "750.00")
	require.NoError(t, s.db.Model(&order).Update("manual_payment_method_id", method.ID).Error)
	shipped := testutil.CreateOrder(t, s.db, customer, "000000000008", models.OrderStatusShipped, "100.00")

	custID := customer.ID
	cookie := sessionCookie(&custID, "")
	path := fmt.Sprintf("/payments/manual/%d", order.ID)

	t.Run("Page shows a UPI link and QR", func(t *testing.T) {
		recorder := s.json(http.MethodGet, path, nil, cookie)
		require.Equal(t, http.StatusOK, recorder.Code)

		var page struct {
			UPIURI    string `json:"upi_uri"`
			QRDataURI string `json:"qr_data_uri"`
		}
		decode(t, recorder, &page)
		assert.Contains(t, page.UPIURI, "am=750.00")
		assert.Contains(t, page.QRDataURI, "data:image/png;base64,")
	})

	t.Run("Closed orders redirect to the detail", func(t *testing.T) {
		recorder := s.json(http.MethodGet, fmt.Sprintf("/payments/manual/%d", shipped.ID), nil, cookie)
		assert.Equal(t, http.StatusSeeOther, recorder.Code)
		assert.Equal(t, fmt.Sprintf("/orders/%d", shipped.ID), recorder.Header().Get("Location"))
	})

	t.Run("Missing reference is 422", func(t *testing.T) {
		recorder := s.form(path, url.Values{"manual_reference": {"  "}}, cookie)
		assert.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
	})

	t.Run("Rejected submissions leave no proof behind", func(t *testing.T) {
		body, contentType := proofForm(t, "  ")
		recorder := s.perform(http.MethodPost, path, body, contentType, cookie)
		assert.Equal(t, http.StatusUnprocessableEntity, recorder.Code)

		body, contentType = proofForm(t, "UTR999")
		recorder = s.perform(http.MethodPost, fmt.Sprintf("/payments/manual/%d", shipped.ID), body, contentType, cookie)
		assert.Equal(t, http.StatusSeeOther, recorder.Code)

		assert.Zero(t, storedProofs(t, s))
	})

	t.Run("Submits with a proof image", func(t *testing.T) {
		body, contentType := proofForm(t, "UTR123456")
		recorder := s.perform(http.MethodPost, path, body, contentType, cookie)
		require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

		var stored models.Payment
		require.NoError(t, s.db.Where("order_id = ?", order.ID).First(&stored).Error)
		assert.Equal(t, "UTR123456", stored.ManualReference)
		assert.Contains(t, stored.ManualProof, "payment_proofs/")
		assert.Equal(t, models.PaymentStatusSubmitted, stored.Status)

		var reloaded models.Order
		require.NoError(t, s.db.First(&reloaded, order.ID).Error)
		assert.Equal(t, models.OrderStatusPaymentSubmitted, reloaded.Status)
		assert.Equal(t, 1, storedProofs(t, s))
	})
}

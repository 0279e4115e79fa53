package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexconsult/registry-api/internal/config"
	"github.com/nexconsult/registry-api/internal/models"
)

func testPaymentConfig() config.PaymentConfig {
	return config.PaymentConfig{
		CardOwner:  "JANE EXAMPLE",
		CardNumber: "4030000010001234",
		ExpMonth:   "12",
		ExpYear:    "29",
		CVD:        "123",
	}
}

func runCheckout(t *testing.T, product models.Product) *fakePage {
	t.Helper()
	page := &fakePage{location: "https://portal.example/receipt"}
	wf := NewCheckoutWorkflow(page, testPaymentConfig(), testLogger())

	url, err := wf.Run(context.Background(), "ACME WIDGETS INC.", product, "buyer@example.com")
	require.NoError(t, err)
	assert.Equal(t, "https://portal.example/receipt", url)
	return page
}

func TestCheckoutWorkflowProfileReport(t *testing.T) {
	page := runCheckout(t, models.ProductProfileReport)

	assert.True(t, page.hasStep("click:"+spanByText("ACME WIDGETS INC.").Expr))
	assert.True(t, page.hasStep("click:"+locRequestProducts.Expr))
	assert.True(t, page.hasStep("click:"+locFromMinistry.Expr))
	assert.True(t, page.hasStep("click:"+labelByText("Profile Report").Expr))
	assert.True(t, page.hasStep("click:"+locCurrentReport.Expr))
	assert.True(t, page.hasStep("fillall:"+locEmailInputs.Expr+"=buyer@example.com"))
	assert.True(t, page.hasStep("click:"+locSubmitSpan.Expr))
	assert.False(t, page.hasStep("click:"+locSelectAllDocs.Expr))
	assert.False(t, page.hasStep("click:"+locRequestDocs.Expr))
}

func TestCheckoutWorkflowDocumentCopies(t *testing.T) {
	page := runCheckout(t, models.ProductDocumentCopies)

	assert.True(t, page.hasStep("click:"+locSelectAllDocs.Expr))
	assert.True(t, page.hasStep("click:"+locRequestDocs.Expr))
	assert.False(t, page.hasStep("click:"+locCurrentReport.Expr))
}

func TestCheckoutWorkflowCertificateOfStatus(t *testing.T) {
	page := runCheckout(t, models.ProductCertificateOfStatus)

	// Certificate orders have no report or document options.
	assert.False(t, page.hasStep("click:"+locCurrentReport.Expr))
	assert.False(t, page.hasStep("click:"+locSelectAllDocs.Expr))
	assert.False(t, page.hasStep("click:"+locRequestDocs.Expr))
	assert.True(t, page.hasStep("fillall:"+locEmailInputs.Expr+"=buyer@example.com"))
	assert.True(t, page.hasStep("click:"+locSubmitSpan.Expr))
}

func TestCheckoutWorkflowEntersCardDetails(t *testing.T) {
	page := runCheckout(t, models.ProductProfileReport)

	assert.True(t, page.hasStep("click:"+locCreditCard.Expr))
	assert.True(t, page.hasStep("click:"+locReviewConfirm.Expr))
	assert.True(t, page.hasStep("click:"+locPaySubmit.Expr))
	assert.True(t, page.hasStep("fill:"+locCardOwner.Expr+"=JANE EXAMPLE"))
	assert.True(t, page.hasStep("fill:"+locCardNumber.Expr+"=4030000010001234"))
	assert.True(t, page.hasStep("fill:"+locCardExpMonth.Expr+"=12"))
	assert.True(t, page.hasStep("fill:"+locCardExpYear.Expr+"=29"))
	assert.True(t, page.hasStep("fill:"+locCardCVD.Expr+"=123"))
	assert.True(t, page.hasStep("click:"+locCardSubmit.Expr))

	// Payment comes after the order form is submitted.
	assert.Less(t, page.stepIndex("click:"+locSubmitSpan.Expr), page.stepIndex("fill:"+locCardOwner.Expr))
}

func TestCheckoutWorkflowRejectsUnknownProduct(t *testing.T) {
	page := &fakePage{}
	wf := NewCheckoutWorkflow(page, testPaymentConfig(), testLogger())

	_, err := wf.Run(context.Background(), "ACME WIDGETS INC.", models.Product("Poster Print"), "buyer@example.com")
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.False(t, page.hasStep("click:"+locCreditCard.Expr), "payment must not start")
}

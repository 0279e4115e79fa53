package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nexconsult/registry-api/internal/browser"
	"github.com/nexconsult/registry-api/internal/config"
	"github.com/nexconsult/registry-api/internal/models"
)

// Checkout page locators. Labels and spans are matched by visible text
// because the portal regenerates ids on every deploy.
var (
	locRequestProducts = spanByText("Request Search Products")
	locFromMinistry    = labelByText("from the Ministry")
	locContinue        = spanByText("Continue")
	locCurrentReport   = labelByText("Current Report")
	locSelectAllDocs   = labelByText("Select all Documents")
	locSubmitSpan      = spanByText("Submit")
	locRequestDocs     = spanByText("Request Documents")
	locEmailInputs     = browser.ByXPath(`//input[@type='email']`).WithTimeout(10 * time.Second)
	locCreditCard      = optionByText("Credit Card")
	locReviewConfirm   = browser.ByXPath(`(//div[@class='appBoxChildren appBlockChildren'])[last()]/button[1]`)
	locPaySubmit       = browser.ByXPath(`//button[@id='submit_btn']`)
	locCardOwner       = browser.ByXPath(`//input[@name='trnCardOwner']`)
	locCardNumber      = browser.ByXPath(`//input[@name='trnCardNumber']`)
	locCardExpMonth    = browser.ByXPath(`//input[@id='trnExpMonth']`)
	locCardExpYear     = browser.ByXPath(`//input[@id='trnExpYear']`)
	locCardCVD         = browser.ByXPath(`//input[@name='trnCardCvd']`)
	locCardSubmit      = browser.ByXPath(`//button[@id='submitButton']`)
)

func spanByText(text string) browser.Locator {
	return browser.ByXPath(`//span[contains(text(), '` + text + `')]`)
}

func labelByText(text string) browser.Locator {
	return browser.ByXPath(`//label[contains(text(), '` + text + `')]`)
}

// CheckoutWorkflow purchases one product for one company on a results
// page the search workflow already reached.
type CheckoutWorkflow struct {
	page    portalPage
	payment config.PaymentConfig
	logger  *logrus.Logger
}

// NewCheckoutWorkflow binds the workflow to a page.
func NewCheckoutWorkflow(page portalPage, payment config.PaymentConfig, logger *logrus.Logger) *CheckoutWorkflow {
	return &CheckoutWorkflow{page: page, payment: payment, logger: logger}
}

// Run clicks through product selection, delivery email and card
// payment for the given company. Any step failing aborts the whole
// attempt; the caller's retry starts over from a fresh search.
func (w *CheckoutWorkflow) Run(ctx context.Context, company string, product models.Product, email string) (string, error) {
	log := w.logger.WithFields(logrus.Fields{
		"workflow": "checkout",
		"company":  company,
		"product":  string(product),
	})

	log.Debug("Opening company entry")
	if err := w.page.ClickFirst(ctx, spanByText(company)); err != nil {
		return "", err
	}
	if err := w.page.ClickFirst(ctx, locRequestProducts); err != nil {
		return "", err
	}
	if err := w.page.ClickFirst(ctx, locFromMinistry); err != nil {
		return "", err
	}
	if err := w.page.ClickFirst(ctx, labelByText(string(product))); err != nil {
		return "", err
	}
	if err := w.page.ClickFirst(ctx, locContinue); err != nil {
		return "", err
	}

	// Each product gets its own order form. Certificate of Status has
	// no extra options, only the email and submit.
	switch product {
	case models.ProductProfileReport:
		if err := w.page.ClickFirst(ctx, locCurrentReport); err != nil {
			return "", err
		}
		sleep(ctx, submitSettle)
		if err := w.fillEmails(ctx, email); err != nil {
			return "", err
		}
		if err := w.page.ClickFirst(ctx, locSubmitSpan); err != nil {
			return "", err
		}
	case models.ProductDocumentCopies:
		if err := w.page.ClickFirst(ctx, locSelectAllDocs); err != nil {
			return "", err
		}
		sleep(ctx, submitSettle)
		if err := w.fillEmails(ctx, email); err != nil {
			return "", err
		}
		if err := w.page.ClickFirst(ctx, locRequestDocs); err != nil {
			return "", err
		}
	case models.ProductCertificateOfStatus:
		if err := w.fillEmails(ctx, email); err != nil {
			return "", err
		}
		if err := w.page.ClickFirst(ctx, locSubmitSpan); err != nil {
			return "", err
		}
	default:
		return "", models.NewValidationError("product", string(product), "unknown product")
	}

	log.Debug("Entering payment")
	if err := w.page.ClickFirst(ctx, locCreditCard); err != nil {
		return "", err
	}
	sleep(ctx, submitSettle)
	if err := w.page.ClickFirst(ctx, locReviewConfirm); err != nil {
		return "", err
	}
	if err := w.page.ClickFirst(ctx, locPaySubmit); err != nil {
		return "", err
	}
	sleep(ctx, submitSettle)

	if err := w.page.FillFirst(ctx, locCardOwner, w.payment.CardOwner); err != nil {
		return "", err
	}
	if err := w.page.FillFirst(ctx, locCardNumber, w.payment.CardNumber); err != nil {
		return "", err
	}
	if err := w.page.FillFirst(ctx, locCardExpMonth, w.payment.ExpMonth); err != nil {
		return "", err
	}
	if err := w.page.FillFirst(ctx, locCardExpYear, w.payment.ExpYear); err != nil {
		return "", err
	}
	if err := w.page.FillFirst(ctx, locCardCVD, w.payment.CVD); err != nil {
		return "", err
	}
	if err := w.page.ClickFirst(ctx, locCardSubmit); err != nil {
		return "", err
	}

	url, err := w.page.Location(ctx)
	if err != nil {
		return "", err
	}
	log.WithField("final_url", url).Info("Checkout submitted")
	return url, nil
}

// fillEmails writes the delivery address into every email input on the
// form. The portal duplicates the field and validates that all copies
// match.
func (w *CheckoutWorkflow) fillEmails(ctx context.Context, email string) error {
	return w.page.FillAll(ctx, locEmailInputs, email)
}

package booking

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"dorax/globals"
	"dorax/models"
	"dorax/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
)

// receiptQRPayload returns "bookingId|confirmation|timestamp|signature"; the
// signature lets the merchant's check-in tooling verify the QR offline.
func receiptQRPayload(bookingID, confirmation string) string {
	data := fmt.Sprintf("%s|%s|%d", bookingID, confirmation, time.Now().Unix())

	h := hmac.New(sha256.New, globals.JwtSecret)
	h.Write([]byte(data))
	sig := base64.StdEncoding.EncodeToString(h.Sum(nil))

	return fmt.Sprintf("%s|%s", data, sig)
}

// Receipt handles GET /api/booking/:id/receipt: a printable PDF with a signed
// QR code, available once the booking is paid.
func (h *Handlers) Receipt(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	b, err := h.Svc.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		respondErr(w, err)
		return
	}
	if b.Status != models.BookingPaid && b.Status != models.BookingCompleted {
		utils.RespondWithError(w, http.StatusBadRequest, "Receipt available after payment")
		return
	}

	confirmation := ConfirmationNumber(b.BookingID)
	qrPNG, err := qrcode.Encode(receiptQRPayload(b.BookingID, confirmation), qrcode.Medium, 256)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate QR code")
		return
	}

	title := "Dora Explorer Booking"
	if exp, expErr := h.Experiences.GetExperience(r.Context(), b.ExperienceID); expErr == nil {
		title = exp.Title
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Booking Receipt")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 10, fmt.Sprintf("Experience: %s", title))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Confirmation: %s", confirmation))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Name: %s", b.Name))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Participants: %d", b.Participants))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Amount: %.2f %s", b.Amount, b.Currency))
	pdf.Ln(12)

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 40, 40, 40, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate PDF")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=booking-"+confirmation+".pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

package v1

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"medstock/internal/domain/prescription"
	"medstock/internal/service"
)

type PrescriptionHandler struct {
	prescriptionSvc *service.PrescriptionService
	reportSvc       *service.ReportService
}

func NewPrescriptionHandler(prescriptionSvc *service.PrescriptionService, reportSvc *service.ReportService) *PrescriptionHandler {
	return &PrescriptionHandler{prescriptionSvc: prescriptionSvc, reportSvc: reportSvc}
}

type createPrescriptionRequest struct {
	PatientName string    `json:"patient_name" binding:"required"`
	IssuedAt    time.Time `json:"issued_at"`
	MedicineID  uint      `json:"medicine_id" binding:"required"`
	Quantity    int       `json:"quantity" binding:"required"`
	DoctorNote  string    `json:"doctor_note"`
}

func (h *PrescriptionHandler) Create(c *gin.Context) {
	var req createPrescriptionRequest
	if !bindJSON(c, &req) {
		return
	}

	callerID, role, ip := caller(c)
	p, err := h.prescriptionSvc.Create(c.Request.Context(), &prescription.Draft{
		PatientName: req.PatientName,
		IssuedAt:    req.IssuedAt,
		MedicineID:  req.MedicineID,
		Quantity:    req.Quantity,
		DoctorNote:  req.DoctorNote,
	}, callerID, role, ip)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondCreated(c, p)
}

func (h *PrescriptionHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	p, err := h.prescriptionSvc.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, p)
}

func (h *PrescriptionHandler) List(c *gin.Context) {
	q := &prescription.ListQuery{Search: c.Query("q")}

	var ok bool
	if q.From, ok = parseTimeQuery(c, "from"); !ok {
		return
	}
	if q.To, ok = parseTimeQuery(c, "to"); !ok {
		return
	}

	ps, err := h.prescriptionSvc.List(c.Request.Context(), q)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, ps)
}

type updatePrescriptionRequest struct {
	PatientName string    `json:"patient_name" binding:"required"`
	IssuedAt    time.Time `json:"issued_at"`
	Quantity    int       `json:"quantity" binding:"required"`
	DoctorNote  string    `json:"doctor_note"`
}

func (h *PrescriptionHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req updatePrescriptionRequest
	if !bindJSON(c, &req) {
		return
	}

	callerID, role, ip := caller(c)
	p, err := h.prescriptionSvc.Update(c.Request.Context(), &prescription.UpdateCommand{
		ID:          id,
		PatientName: req.PatientName,
		IssuedAt:    req.IssuedAt,
		Quantity:    req.Quantity,
		DoctorNote:  req.DoctorNote,
	}, callerID, role, ip)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, p)
}

func (h *PrescriptionHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	callerID, role, ip := caller(c)
	if err := h.prescriptionSvc.Delete(c.Request.Context(), id, callerID, role, ip); err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, gin.H{"deleted": id})
}

// WatchAll streams the full prescription list on every change.
func (h *PrescriptionHandler) WatchAll(c *gin.Context) {
	updates := h.prescriptionSvc.Watch(c.Request.Context())

	c.Stream(func(w io.Writer) bool {
		ps, open := <-updates
		if !open {
			return false
		}
		c.SSEvent("prescriptions", ps)
		return true
	})
}

func (h *PrescriptionHandler) Recap(c *gin.Context) {
	from, ok := parseTimeQuery(c, "from")
	if !ok {
		return
	}
	to, ok := parseTimeQuery(c, "to")
	if !ok {
		return
	}

	recap, err := h.reportSvc.Recap(c.Request.Context(), from, to)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, recap)
}

func parseTimeQuery(c *gin.Context, key string) (time.Time, bool) {
	raw := c.Query(key)
	if raw == "" {
		return time.Time{}, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		// Fall back to plain dates, the format the mobile client sends.
		t, err = time.Parse("2006-01-02", raw)
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + key + ": use RFC 3339 or YYYY-MM-DD"})
		return time.Time{}, false
	}
	return t, true
}

package v1

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"medstock/internal/domain/medicine"
	"medstock/internal/service"
)

type MedicineHandler struct {
	stockSvc *service.StockService
}

func NewMedicineHandler(stockSvc *service.StockService) *MedicineHandler {
	return &MedicineHandler{stockSvc: stockSvc}
}

type medicineRequest struct {
	Name      string    `json:"name" binding:"required"`
	Quantity  int       `json:"quantity"`
	ExpiresAt time.Time `json:"expires_at" binding:"required"`
	UnitPrice int       `json:"unit_price"`
}

func (h *MedicineHandler) Create(c *gin.Context) {
	var req medicineRequest
	if !bindJSON(c, &req) {
		return
	}

	callerID, role, ip := caller(c)
	m, err := h.stockSvc.CreateMedicine(c.Request.Context(), &medicine.Medicine{
		Name:      req.Name,
		Quantity:  req.Quantity,
		ExpiresAt: req.ExpiresAt,
		UnitPrice: req.UnitPrice,
	}, callerID, role, ip)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondCreated(c, m)
}

func (h *MedicineHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	m, err := h.stockSvc.GetMedicine(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, m)
}

func (h *MedicineHandler) List(c *gin.Context) {
	ms, err := h.stockSvc.ListMedicines(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, ms)
}

func (h *MedicineHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req medicineRequest
	if !bindJSON(c, &req) {
		return
	}

	callerID, role, ip := caller(c)
	m, err := h.stockSvc.UpdateMedicine(c.Request.Context(), &medicine.Medicine{
		ID:        id,
		Name:      req.Name,
		Quantity:  req.Quantity,
		ExpiresAt: req.ExpiresAt,
		UnitPrice: req.UnitPrice,
	}, callerID, role, ip)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, m)
}

func (h *MedicineHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	callerID, role, ip := caller(c)
	if err := h.stockSvc.DeleteMedicine(c.Request.Context(), id, callerID, role, ip); err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, gin.H{"deleted": id})
}

type adjustRequest struct {
	Delta int `json:"delta" binding:"required"`
}

func (h *MedicineHandler) Adjust(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req adjustRequest
	if !bindJSON(c, &req) {
		return
	}

	callerID, role, ip := caller(c)
	if err := h.stockSvc.AdjustQuantity(c.Request.Context(), id, req.Delta, callerID, role, ip); err != nil {
		respondServiceError(c, err)
		return
	}

	m, err := h.stockSvc.GetMedicine(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, m)
}

func (h *MedicineHandler) Dashboard(c *gin.Context) {
	summary, err := h.stockSvc.Dashboard(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, summary)
}

// Watch streams live updates for one medicine as server-sent events. A
// deleted medicine produces an "absent" event; the stream stays open until
// the client goes away.
func (h *MedicineHandler) Watch(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	updates := h.stockSvc.WatchMedicine(c.Request.Context(), id)

	c.Stream(func(w io.Writer) bool {
		u, open := <-updates
		if !open {
			return false
		}
		if u.Absent {
			c.SSEvent("absent", gin.H{"id": id})
		} else {
			c.SSEvent("medicine", u.Medicine)
		}
		return true
	})
}

// WatchAll streams the full medicine list on every change.
func (h *MedicineHandler) WatchAll(c *gin.Context) {
	updates := h.stockSvc.WatchMedicines(c.Request.Context())

	c.Stream(func(w io.Writer) bool {
		ms, open := <-updates
		if !open {
			return false
		}
		c.SSEvent("medicines", ms)
		return true
	})
}

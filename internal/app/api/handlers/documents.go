package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fatflowers/notemarket/internal/app/api/middleware"
	"github.com/fatflowers/notemarket/internal/app/service/access"
	"github.com/fatflowers/notemarket/internal/app/service/settlement"
	"github.com/fatflowers/notemarket/internal/models"
	"github.com/fatflowers/notemarket/pkg/logctx"
	"github.com/fatflowers/notemarket/pkg/response"
	"github.com/fatflowers/notemarket/pkg/tool"
	"github.com/fatflowers/notemarket/pkg/types"
)

// AccessChecker is satisfied by *access.Gate.
type AccessChecker interface {
	Check(ctx context.Context, who *types.Identity, documentID uint64) (*models.Document, access.Decision, error)
}

type DocumentView struct {
	ID          uint64        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	PriceCents  int64         `json:"price_cents"`
	Price       string        `json:"price"`
	SellerID    string        `json:"seller_id"`
	IsActive    bool          `json:"is_active"`
	CanDownload bool          `json:"can_download"`
	Reason      access.Reason `json:"reason,omitempty"`
	Notice      types.Notice  `json:"notice,omitempty"`
}

func newDocumentView(doc *models.Document, d access.Decision) DocumentView {
	return DocumentView{
		ID:          doc.ID,
		Title:       doc.Title,
		Description: doc.Description,
		PriceCents:  doc.PriceCents,
		Price:       tool.MinorToMajor(doc.PriceCents).StringFixed(2),
		SellerID:    doc.SellerID,
		IsActive:    doc.IsActive,
		CanDownload: d.Allowed,
		Reason:      d.Reason,
		Notice:      d.Notice,
	}
}

// @Summary      Download a document
// @Description  Redirects to the stored file when the caller may download it, otherwise back to the document page.
// @Tags         Document
// @Param        document_id  path  int  true  "Document ID"
// @Success      302
// @Failure      401  {object}  handlers.RespOK
// @Failure      404  {object}  handlers.RespOK
// @Router       /download/{document_id} [get]
func ApiDownload(gate AccessChecker, settings settlement.Settings, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		docID, ok := documentID(c)
		if !ok {
			return
		}
		doc, d, err := gate.Check(c, middleware.IdentityFrom(c), docID)
		if err != nil {
			if errors.Is(err, access.ErrNotFound) {
				c.JSON(http.StatusNotFound, response.ErrorT[any](response.APIResponseCodeNotFound, types.NoticeDocumentNotFound.Message()))
				return
			}
			logctx.FromCtx(c, log).Errorw("download_check_failed", "document_id", docID, "error", err)
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, nil))
			return
		}
		if !d.Allowed {
			redirectWithNotice(c, settings.DocumentURL(docID), d.Notice)
			return
		}
		c.Redirect(http.StatusFound, settings.FileURL(doc.FilePath))
	}
}

// @Summary      Get a document
// @Description  Returns the document and whether the caller may download it.
// @Tags         Document
// @Produce      json
// @Param        document_id  path  int  true  "Document ID"
// @Success      200  {object}  handlers.RespDocument
// @Router       /api/v1/documents/{document_id} [get]
func ApiGetDocument(gate AccessChecker, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		docID, ok := documentID(c)
		if !ok {
			return
		}
		doc, d, err := gate.Check(c, middleware.IdentityFrom(c), docID)
		if err != nil {
			if errors.Is(err, access.ErrNotFound) {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeNotFound, types.NoticeDocumentNotFound.Message()))
				return
			}
			logctx.FromCtx(c, log).Errorw("document_check_failed", "document_id", docID, "error", err)
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(newDocumentView(doc, d)))
	}
}

func RegisterDocumentRoutes(r gin.IRouter, gate AccessChecker, settings settlement.Settings, log *zap.SugaredLogger) {
	r.GET("/download/:document_id", middleware.RequireAuth(), ApiDownload(gate, settings, log))
}

func RegisterDocumentAPIRoutes(r gin.IRouter, gate AccessChecker, log *zap.SugaredLogger) {
	r.GET("/documents/:document_id", ApiGetDocument(gate, log))
}

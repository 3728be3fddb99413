package handlers

import (
	"mime/multipart"
	"strconv"

	"fixerhub/apperrors"
	"fixerhub/services/storage"
	"fixerhub/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// bindJSON decodes the body into dst and writes a 400 on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		utils.GetLogger().Debug("invalid request body", zap.String("path", c.FullPath()), zap.Error(err))
		utils.RespondError(c, apperrors.Validation("invalid request body: %v", err))
		return false
	}
	return true
}

// page reads ?limit= and ?skip= with a default and cap on limit.
func page(c *gin.Context) (limit, skip int64) {
	limit, _ = strconv.ParseInt(c.DefaultQuery("limit", "20"), 10, 64)
	skip, _ = strconv.ParseInt(c.DefaultQuery("skip", "0"), 10, 64)
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if skip < 0 {
		skip = 0
	}
	return limit, skip
}

// formFile opens the multipart field and checks its size and type. The caller closes the file.
func formFile(c *gin.Context, field string, allowed []string) (multipart.File, bool) {
	header, err := c.FormFile(field)
	if err != nil {
		utils.RespondError(c, apperrors.Validation("missing file field %q", field))
		return nil, false
	}
	file, err := header.Open()
	if err != nil {
		utils.RespondError(c, apperrors.Validation("could not read uploaded file"))
		return nil, false
	}
	if err := storage.CheckUpload(file, header, allowed); err != nil {
		file.Close()
		utils.RespondError(c, err)
		return nil, false
	}
	return file, true
}

package api

import (
	"errors"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"path"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/ourworld/internal/storage"
)

// StaticHandler は公開ディレクトリのファイルを返します。
// Guard の後ろに置くため、ここに到達した時点でアクセスは許可済みです。
func StaticHandler(assets *storage.Local) gin.HandlerFunc {
	return func(c *gin.Context) {
		if assets == nil {
			respondNotFound(c)
			return
		}

		file, info, name, err := assets.Open(c.Request.URL.Path)
		if errors.Is(err, fs.ErrNotExist) {
			respondNotFound(c)
			return
		}
		if err != nil {
			respondWithError(c, err)
			return
		}
		defer file.Close()

		contentType, err := detectContentType(name, file)
		if err != nil {
			respondWithError(c, err)
			return
		}
		c.Header("Content-Type", contentType)
		http.ServeContent(c.Writer, c.Request, name, info.ModTime(), file)
	}
}

// detectContentType は拡張子から Content-Type を決め、分からなければ中身から判定します。
// 判定後は読み取り位置を先頭に戻します。
func detectContentType(name string, file io.ReadSeeker) (string, error) {
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		return ct, nil
	}

	mt, err := mimetype.DetectReader(file)
	if err != nil {
		return "", err
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return mt.String(), nil
}

func respondNotFound(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "Not found."})
}

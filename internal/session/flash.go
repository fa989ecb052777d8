package session

import (
	"github.com/gin-gonic/gin"
)

const FlashCookie = "flash"

type FlashKind string

const (
	FlashSuccess FlashKind = "success"
	FlashError   FlashKind = "error"
)

// Flash is a one-shot notification shown on the next rendered page.
type Flash struct {
	Kind    FlashKind `json:"k"`
	Message string    `json:"m"`
}

// SetFlash queues a notification for the next page the browser loads.
func (s *Store) SetFlash(c *gin.Context, kind FlashKind, message string) {
	enc, err := s.codec.Encode(FlashCookie, Flash{Kind: kind, Message: message})
	if err != nil {
		s.logger.WarnContext(c.Request.Context(), "flash_encode_failed", "error", err.Error())
		return
	}
	s.setCookie(c, FlashCookie, enc, 60)
}

// TakeFlash returns the pending notification, if any, and clears it.
func (s *Store) TakeFlash(c *gin.Context) (Flash, bool) {
	raw, err := c.Cookie(FlashCookie)
	if err != nil || raw == "" {
		return Flash{}, false
	}
	s.setCookie(c, FlashCookie, "", -1)

	var f Flash
	if err := s.codec.Decode(FlashCookie, raw, &f); err != nil {
		return Flash{}, false
	}
	return f, true
}

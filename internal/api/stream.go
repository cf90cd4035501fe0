package api

import (
	"artify/internal/entity"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ResponseStream 管理生成接口的响应生命周期。上游调用可能耗时数十秒，
// Commit 后后台定时写出空白保活片段，避免中间代理的空闲超时掐断连接。
//
// 响应头采用惰性提交：Commit 只是武装保活定时器，真正写出 200 响应头
// 发生在第一个保活片段落盘时。在第一个保活间隔内就得出的失败仍然可以
// 使用真实的 HTTP 状态码；之后的失败只能编码进 200 响应的终结 JSON。
type ResponseStream struct {
	c        *gin.Context
	interval time.Duration

	mu          sync.Mutex
	committed   bool
	headersSent bool
	closed      bool
	clientGone  bool

	stop     chan struct{}
	stopOnce sync.Once

	// OnClientGone 在观察到客户端断开时回调一次，用于立即释放并发闸门。
	OnClientGone func()
}

func NewResponseStream(c *gin.Context, interval time.Duration) *ResponseStream {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &ResponseStream{
		c:        c,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

// Commit 承诺最终交付某个结果并启动保活。此后发现的失败不再保证
// 能以真实状态码送达。
func (s *ResponseStream) Commit() {
	s.mu.Lock()
	if s.committed || s.closed {
		s.mu.Unlock()
		return
	}
	s.committed = true
	s.mu.Unlock()

	go s.watch()
}

func (s *ResponseStream) watch() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	clientCtx := s.c.Request.Context()
	for {
		select {
		case <-s.stop:
			return
		case <-clientCtx.Done():
			s.markClientGone()
			return
		case <-ticker.C:
			s.writeKeepAlive()
		}
	}
}

func (s *ResponseStream) markClientGone() {
	s.mu.Lock()
	alreadyGone := s.clientGone
	s.clientGone = true
	callback := s.OnClientGone
	s.mu.Unlock()

	if !alreadyGone {
		logrus.Info("stream_client_disconnected")
		if callback != nil {
			callback()
		}
	}
}

// writeKeepAlive 写出一个空白字节。JSON 值前的空白是合法的，
// 终结块照常解析。
func (s *ResponseStream) writeKeepAlive() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.clientGone {
		return
	}

	if !s.headersSent {
		s.c.Writer.Header().Set("Content-Type", "application/json; charset=utf-8")
		s.c.Writer.Header().Set("X-Accel-Buffering", "no")
		s.c.Writer.WriteHeader(http.StatusOK)
		s.headersSent = true
	}

	if _, err := s.c.Writer.Write([]byte(" ")); err != nil {
		s.clientGone = true
		return
	}
	s.c.Writer.Flush()
}

// ClientGone 报告是否已观察到客户端断开
func (s *ResponseStream) ClientGone() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clientGone
}

// Succeed 停止保活并写出成功的终结 JSON。客户端已断开时结果被丢弃。
func (s *ResponseStream) Succeed(result *entity.GenerationResult) {
	s.finish(http.StatusOK, result)
}

// Fail 停止保活并写出失败响应。响应头未写出时使用错误码映射的
// HTTP 状态码，否则在 200 正文中携带 success:false。
func (s *ResponseStream) Fail(code, message string) {
	s.finish(statusForCode(code), entity.NewGenerationError(code, message))
}

func (s *ResponseStream) finish(status int, body any) {
	s.stopKeepAlive()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true

	if s.clientGone {
		return
	}

	if !s.headersSent {
		s.c.JSON(status, body)
		return
	}

	payload, err := json.Marshal(body)
	if err != nil {
		logrus.WithError(err).Error("stream_final_marshal_failed")
		return
	}
	if _, err := s.c.Writer.Write(payload); err != nil {
		logrus.WithError(err).Warn("stream_final_write_failed")
		return
	}
	s.c.Writer.Flush()
}

// Close 停止保活，不再写任何内容。幂等。
func (s *ResponseStream) Close() {
	s.stopKeepAlive()
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

func (s *ResponseStream) stopKeepAlive() {
	s.stopOnce.Do(func() { close(s.stop) })
}

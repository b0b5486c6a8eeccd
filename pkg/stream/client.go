// Package stream 实现了core.DataSource接口
// 维持到后端的实时流连接，在主端点和备用端点之间交替重连，
// 并把收到的观测报文写入有上限的时间序列窗口
package stream

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/Kevin-Rudy/pulsesense/pkg/classifier"
	"github.com/Kevin-Rudy/pulsesense/pkg/core"
	"github.com/Kevin-Rudy/pulsesense/pkg/endpoint"
	"github.com/Kevin-Rudy/pulsesense/pkg/series"
	"github.com/Kevin-Rudy/pulsesense/pkg/status"
	"go.uber.org/zap"
)

// eventKind 事件循环处理的事件类型
type eventKind int

const (
	eventDialed  eventKind = iota // 握手完成（成功或失败）
	eventMessage                  // 收到一条消息
	eventClosed                   // 连接出错或关闭
)

// event 由辅助goroutine投递给事件循环
// gen 是发起该连接时的代次，旧连接的事件会被丢弃
type event struct {
	kind    eventKind
	gen     uint64
	conn    Conn
	payload []byte
	err     error
}

// Client 连接管理器
// 除了atomic字段，所有状态只由事件循环goroutine读写
type Client struct {
	config    *Config
	endpoints endpoint.Endpoints
	dialer    Dialer
	logger    *zap.Logger
	recorder  Recorder

	// 以下字段归事件循环所有
	store      *series.Store
	feed       *series.Ring[core.Envelope]
	state      core.ConnectionState
	attempts   uint64 // 已发起的连接尝试次数，只增不减
	generation uint64 // 当前连接代次
	conn       Conn   // 当前打开的传输句柄，同一时刻最多一个
	role       core.EndpointRole
	url        string
	lastErr    string
	lastUpdate time.Time
	retry      *time.Timer

	events  chan event
	updates chan core.Snapshot
	current atomic.Pointer[core.Snapshot]
	started atomic.Bool
	done    chan struct{}
}

// NewClient 创建新的客户端实例，此时不进行任何网络操作
func NewClient(config *Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		config:    config,
		endpoints: endpoint.Resolve(config.Backend),
		dialer:    config.Dialer,
		logger:    config.Logger,
		recorder:  config.Recorder,
		store:     series.NewStore(config.HistorySize),
		feed:      series.NewRing[core.Envelope](config.FeedSize),
		state:     core.StateIdle,
		events:    make(chan event),
		updates:   make(chan core.Snapshot, 1),
		done:      make(chan struct{}),
	}

	if c.dialer == nil {
		origin := config.Origin
		if origin == "" {
			origin = config.Backend
		}
		c.dialer = WebsocketDialer{Origin: origin}
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.recorder == nil {
		c.recorder = noopRecorder{}
	}

	snap := c.buildSnapshot()
	c.current.Store(&snap)

	return c, nil
}

// Endpoints 返回本次会话的候选端点
func (c *Client) Endpoints() endpoint.Endpoints {
	return c.endpoints
}

// Start 实现core.DataSource接口
// 启动事件循环，重复调用无效果。循环只在ctx结束时退出。
func (c *Client) Start(ctx context.Context) {
	if !c.started.CompareAndSwap(false, true) {
		return
	}
	go c.run(ctx)
}

// Done 返回一个在事件循环退出后关闭的通道
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Snapshot 实现core.DataSource接口
func (c *Client) Snapshot() core.Snapshot {
	return *c.current.Load()
}

// Updates 实现core.DataSource接口
func (c *Client) Updates() <-chan core.Snapshot {
	return c.updates
}

// Window 返回指定指标当前窗口的只读副本
func (c *Client) Window(kind core.MetricKind) []core.TelemetryPoint {
	return c.Snapshot().Metric(kind).Points
}

// run 事件循环，串行处理连接事件、消息和重连定时器
func (c *Client) run(ctx context.Context) {
	defer close(c.done)
	defer c.shutdown()

	c.attempt(ctx)

	for {
		select {
		case <-ctx.Done():
			return

		case <-c.retryC():
			c.retry = nil
			c.attempt(ctx)

		case ev := <-c.events:
			c.handle(ctx, ev)
		}
	}
}

// retryC 返回重连定时器的通道，没有待触发的重连时返回nil
func (c *Client) retryC() <-chan time.Time {
	if c.retry == nil {
		return nil
	}
	return c.retry.C
}

// attempt 发起一次连接尝试
func (c *Client) attempt(ctx context.Context) {
	if c.conn != nil {
		// 正常流程不会走到这里，连接关闭后才会安排重连
		c.closeConn()
	}

	url, role := c.endpoints.Select(c.attempts)
	c.attempts++
	c.generation++
	c.role, c.url = role, url

	c.recorder.AttemptStarted(role)
	c.logger.Debug("发起连接",
		zap.Uint64("attempt", c.attempts),
		zap.String("role", role.String()),
		zap.String("endpoint", url))
	c.setState(core.StateConnecting)

	// 无法构造连接等同于异步连接失败
	if err := checkEndpoint(url); err != nil {
		c.fail(err)
		return
	}

	go c.dial(ctx, c.generation, url)
}

// dial 在辅助goroutine中完成握手
func (c *Client) dial(ctx context.Context, gen uint64, url string) {
	dialCtx, cancel := context.WithTimeout(ctx, c.config.DialTimeout)
	defer cancel()

	conn, err := c.dialer.Dial(dialCtx, url)
	if !c.post(ctx, event{kind: eventDialed, gen: gen, conn: conn, err: err}) && conn != nil {
		_ = conn.Close()
	}
}

// read 在辅助goroutine中按到达顺序转发消息
func (c *Client) read(ctx context.Context, gen uint64, conn Conn) {
	for {
		payload, err := conn.Receive()
		if err != nil {
			c.post(ctx, event{kind: eventClosed, gen: gen, err: err})
			return
		}
		if !c.post(ctx, event{kind: eventMessage, gen: gen, payload: payload}) {
			return
		}
	}
}

// post 把事件交给事件循环，循环已退出时返回false
func (c *Client) post(ctx context.Context, ev event) bool {
	select {
	case c.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// handle 处理一个事件
func (c *Client) handle(ctx context.Context, ev event) {
	if ev.gen != c.generation {
		if ev.conn != nil {
			_ = ev.conn.Close()
		}
		return
	}

	switch ev.kind {
	case eventDialed:
		if ev.err != nil {
			c.fail(ev.err)
			return
		}
		c.conn = ev.conn
		c.lastErr = ""
		c.logger.Info("已连接",
			zap.String("role", c.role.String()),
			zap.String("endpoint", c.url))
		c.setState(core.StateConnected)
		go c.read(ctx, ev.gen, ev.conn)

	case eventMessage:
		if c.conn != nil {
			c.ingest(ev.payload)
		}

	case eventClosed:
		if c.conn == nil {
			return
		}
		c.closeConn()
		c.fail(ev.err)
	}
}

// ingest 分类报文并写入窗口
func (c *Client) ingest(payload []byte) {
	reading, err := classifier.Classify(payload)
	if err != nil {
		reason := "malformed"
		if errors.Is(err, classifier.ErrNotObservation) {
			reason = "not_observation"
		}
		c.recorder.EnvelopeDropped(reason)
		c.logger.Debug("丢弃报文", zap.String("reason", reason))
		return
	}

	c.lastUpdate = reading.Envelope.EffectiveAt
	c.feed.Push(reading.Envelope)
	c.recorder.EnvelopeAccepted(reading.Routed)

	if reading.Routed {
		c.store.Push(reading.Kind, reading.Point)
		c.recorder.PointStored(reading.Kind, reading.Point.Value)
	}

	c.publish()
}

// fail 记录连接失败并安排下一次重连
func (c *Client) fail(err error) {
	if err != nil {
		c.lastErr = err.Error()
	}
	c.logger.Warn("连接断开，稍后重试",
		zap.String("role", c.role.String()),
		zap.String("endpoint", c.url),
		zap.Duration("retry_delay", c.config.RetryDelay),
		zap.Error(err))
	c.setState(core.StateDisconnected)
	c.retry = time.NewTimer(c.config.RetryDelay)
}

// setState 切换连接状态并发布快照
func (c *Client) setState(state core.ConnectionState) {
	c.state = state
	c.recorder.StateChanged(state)
	c.publish()
}

func (c *Client) closeConn() {
	if c.conn == nil {
		return
	}
	_ = c.conn.Close()
	c.conn = nil
}

// shutdown 事件循环退出时释放定时器和连接
func (c *Client) shutdown() {
	if c.retry != nil {
		c.retry.Stop()
		c.retry = nil
	}
	c.closeConn()
}

// publish 生成新快照，保存并通知订阅者
// 通道只保留最新的一份，不会阻塞事件循环
func (c *Client) publish() {
	snap := c.buildSnapshot()
	c.current.Store(&snap)

	select {
	case <-c.updates:
	default:
	}
	select {
	case c.updates <- snap:
	default:
	}
}

// buildSnapshot 深拷贝当前状态
func (c *Client) buildSnapshot() core.Snapshot {
	snap := core.Snapshot{
		Feed:       c.feed.Items(),
		LastUpdate: c.lastUpdate,
		Connectivity: core.Connectivity{
			State:     c.state,
			Role:      c.role,
			Endpoint:  c.url,
			Attempts:  c.attempts,
			LastError: c.lastErr,
		},
	}

	for _, kind := range core.AllKinds {
		latest, ok := c.store.Latest(kind)
		s := core.SeriesSnapshot{
			Kind:   kind,
			Points: c.store.Window(kind),
			Status: status.ForLatest(kind, latest, ok),
		}
		if ok {
			s.Latest = &latest
		}
		snap.Series[kind] = s
	}

	return snap
}

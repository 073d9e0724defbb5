package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// 可选的缓存实现
const (
	BackendStore    = "store"
	BackendGoCache  = "gocache"
	BackendTTLCache = "ttlcache"
)

// Opts 启动参数
type Opts struct {
	Listen           string        `short:"l" long:"listen" default:":8080" description:"address the HTTP server binds to"`
	DSN              string        `long:"dsn" env:"LMS_MYSQL_DSN" description:"MySQL data source name"`
	DefaultTTL       time.Duration `long:"default-ttl" default:"30m" description:"lifetime of cached lookups"`
	SweepInterval    time.Duration `long:"sweep-interval" default:"0s" description:"interval of the expired entry sweep, 0 disables it"`
	Backend          string        `long:"backend" default:"store" choice:"store" choice:"gocache" choice:"ttlcache" description:"cache implementation"`
	MetricsNamespace string        `long:"metrics-namespace" default:"lms" description:"Prometheus namespace"`
	SingleFlight     bool          `long:"single-flight" description:"share one database call between concurrent misses of the same key"`
}

// Parse 解析命令行参数并校验
func Parse(args []string) (*Opts, error) {
	o := new(Opts)
	if _, err := flags.ParseArgs(o, args); err != nil {
		return nil, err
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return o, nil
}

// IsHelp 是否为 -h/--help 触发的返回，此时帮助信息已输出
func IsHelp(err error) bool {
	var fe *flags.Error
	return errors.As(err, &fe) && fe.Type == flags.ErrHelp
}

// IsFlagError 是否为参数解析错误，go-flags 已把错误信息输出到 stderr
func IsFlagError(err error) bool {
	var fe *flags.Error
	return errors.As(err, &fe)
}

// Validate 校验参数
func (o *Opts) Validate() error {
	if o.DSN == "" {
		return errors.New("缺少数据库连接串 dsn")
	}
	if o.DefaultTTL < 0 {
		return fmt.Errorf("default-ttl 不能为负数: %s", o.DefaultTTL)
	}
	if o.SweepInterval < 0 {
		return fmt.Errorf("sweep-interval 不能为负数: %s", o.SweepInterval)
	}
	switch o.Backend {
	case BackendStore, BackendGoCache, BackendTTLCache:
	default:
		return fmt.Errorf("未知的缓存实现: %s", o.Backend)
	}
	return nil
}

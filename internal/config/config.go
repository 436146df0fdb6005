package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Logging struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"logging"`
	Server struct {
		Addr                string   `yaml:"addr"`
		Pprof               bool     `yaml:"pprof"`
		ReadTimeoutSeconds  int      `yaml:"read_timeout_seconds"`
		WriteTimeoutSeconds int      `yaml:"write_timeout_seconds"`
		IdleTimeoutSeconds  int      `yaml:"idle_timeout_seconds"`
		AdminAllowCIDRs     []string `yaml:"admin_allow_cidrs"`
	} `yaml:"server"`
	Scan struct {
		BaseAsset       string           `yaml:"base_asset"`
		BaseSymbol      string           `yaml:"base_symbol"`
		Hops            int              `yaml:"hops"`
		MaxHops         int              `yaml:"max_hops"`
		MaxNodes        int              `yaml:"max_nodes"`
		TradeAmount     string           `yaml:"trade_amount"`
		Strategy        string           `yaml:"strategy"` // rate-product | simulate
		MaxImpact       float64          `yaml:"max_impact"`
		Workers         int              `yaml:"workers"`
		IntervalSeconds int              `yaml:"interval_seconds"`
		FeesBps         map[string]int64 `yaml:"fees_bps"`
		ReportCSV       string           `yaml:"report_csv"`
		TopCandidates   int              `yaml:"top_candidates"`
	} `yaml:"scan"`
	Venues struct {
		Dedust struct {
			Enabled bool   `yaml:"enabled"`
			BaseURL string `yaml:"base_url"`
		} `yaml:"dedust"`
		Stonfi struct {
			Enabled bool   `yaml:"enabled"`
			BaseURL string `yaml:"base_url"`
		} `yaml:"stonfi"`
		CSV struct {
			Path string `yaml:"path"`
		} `yaml:"csv"`
	} `yaml:"venues"`
}

// TONNativeAddress is the sentinel address TON DEX APIs use for the
// chain's native asset. The scanner treats it as just another node
// address; override via scan.base_asset for other chains.
const TONNativeAddress = "EQAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAM9c"

func defaultConfig() Config {
	var c Config
	c.Logging.Level = "info"
	c.Logging.Pretty = false
	c.Server.Addr = ":9090"
	c.Server.Pprof = false
	c.Server.ReadTimeoutSeconds = 5
	c.Server.WriteTimeoutSeconds = 10
	c.Server.IdleTimeoutSeconds = 60
	c.Server.AdminAllowCIDRs = []string{"127.0.0.0/8", "::1/128"}
	c.Scan.BaseAsset = TONNativeAddress
	c.Scan.BaseSymbol = "TON"
	c.Scan.Hops = 3
	c.Scan.MaxHops = 5
	c.Scan.MaxNodes = 300
	c.Scan.TradeAmount = "1000000000" // 1 TON in nanotons
	c.Scan.Strategy = "rate-product"
	c.Scan.MaxImpact = 0.2
	c.Scan.Workers = 4
	c.Scan.IntervalSeconds = 60
	c.Scan.FeesBps = map[string]int64{"dedust": 30, "stonfi": 30}
	c.Scan.TopCandidates = 10
	c.Venues.Dedust.Enabled = true
	c.Venues.Dedust.BaseURL = "https://api.dedust.io"
	c.Venues.Stonfi.Enabled = true
	c.Venues.Stonfi.BaseURL = "https://api.ston.fi"
	return c
}

func Load() Config {
	c := defaultConfig()
	if path := os.Getenv("TONARB_CONFIG"); path != "" {
		if b, err := os.ReadFile(path); err == nil {
			_ = yaml.Unmarshal(b, &c)
		}
	}
	if v := os.Getenv("TONARB_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("TONARB_LOG_PRETTY"); v == "1" || v == "true" {
		c.Logging.Pretty = true
	}
	if v := os.Getenv("TONARB_HTTP_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("TONARB_PPROF"); v == "1" || v == "true" {
		c.Server.Pprof = true
	}
	if v := os.Getenv("TONARB_ADMIN_ALLOW_CIDRS"); v != "" {
		c.Server.AdminAllowCIDRs = splitCSV(v)
	}
	if v := os.Getenv("TONARB_BASE_ASSET"); v != "" {
		c.Scan.BaseAsset = v
	}
	if v := os.Getenv("TONARB_BASE_SYMBOL"); v != "" {
		c.Scan.BaseSymbol = v
	}
	if v := os.Getenv("TONARB_HOPS"); v != "" {
		var n int
		_, _ = fmt.Sscan(v, &n)
		if n > 0 {
			c.Scan.Hops = n
		}
	}
	if v := os.Getenv("TONARB_TRADE_AMOUNT"); v != "" {
		c.Scan.TradeAmount = v
	}
	if v := os.Getenv("TONARB_STRATEGY"); v != "" {
		c.Scan.Strategy = v
	}
	if v := os.Getenv("TONARB_MAX_IMPACT"); v != "" {
		var f float64
		_, _ = fmt.Sscan(v, &f)
		if f > 0 {
			c.Scan.MaxImpact = f
		}
	}
	if v := os.Getenv("TONARB_WORKERS"); v != "" {
		var n int
		_, _ = fmt.Sscan(v, &n)
		if n > 0 {
			c.Scan.Workers = n
		}
	}
	if v := os.Getenv("TONARB_SCAN_INTERVAL_SECONDS"); v != "" {
		var n int
		_, _ = fmt.Sscan(v, &n)
		if n > 0 {
			c.Scan.IntervalSeconds = n
		}
	}
	if v := os.Getenv("TONARB_MAX_NODES"); v != "" {
		var n int
		_, _ = fmt.Sscan(v, &n)
		if n > 0 {
			c.Scan.MaxNodes = n
		}
	}
	if v := os.Getenv("TONARB_REPORT_CSV"); v != "" {
		c.Scan.ReportCSV = v
	}
	if v := os.Getenv("TONARB_DEDUST_BASE_URL"); v != "" {
		c.Venues.Dedust.BaseURL = v
	}
	if v := os.Getenv("TONARB_STONFI_BASE_URL"); v != "" {
		c.Venues.Stonfi.BaseURL = v
	}
	if v := os.Getenv("TONARB_CSV_POOLS"); v != "" {
		c.Venues.CSV.Path = v
	}
	return c
}

// FeeBps returns the configured fee for venue, defaulting to 30 bps.
func (c Config) FeeBps(venue string) int64 {
	if bps, ok := c.Scan.FeesBps[venue]; ok {
		return bps
	}
	return 30
}

func splitCSV(s string) []string {
	var out []string
	buf := []rune{}
	for _, r := range s {
		if r == ',' {
			if len(buf) > 0 {
				out = append(out, string(buf))
				buf = buf[:0]
			}
			continue
		}
		buf = append(buf, r)
	}
	if len(buf) > 0 {
		out = append(out, string(buf))
	}
	return out
}

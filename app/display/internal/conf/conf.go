package conf

type Bootstrap struct {
	Server   *Server   `json:"server"`
	Data     *Data     `json:"data"`
	Auth     *Auth     `json:"auth"`
	Analyzer *Analyzer `json:"analyzer"`
}

type Auth struct {
	JwtKey            string `json:"jwt_key"`
	AdminUser         string `json:"admin_user"`
	AdminPasswordHash string `json:"admin_password_hash"`
	// TokenTTL 令牌有效期，例如 "24h"
	TokenTTL string `json:"token_ttl"`
}

type Server struct {
	Http *HTTP `json:"http"`
}

type HTTP struct {
	Addr        string `json:"addr"`
	Timeout     string `json:"timeout"`
	MaxUploadMb int64  `json:"max_upload_mb"`
}

type Data struct {
	Database *Database `json:"database"`
	History  *History  `json:"history"`
}

// Database 配置 driver 后历史记录存入数据库，否则使用 JSON 文件
type Database struct {
	Driver string `json:"driver"`
	Source string `json:"source"`
}

type History struct {
	Path string `json:"path"`
	// Retention 保留时长，例如 "2160h"
	Retention string `json:"retention"`
}

type Analyzer struct {
	Llm         *LLM         `json:"llm"`
	Log         *Log         `json:"log"`
	Concurrency *Concurrency `json:"concurrency"`
	Pipeline    *Pipeline    `json:"pipeline"`
	Catalog     *Catalog     `json:"catalog"`
}

type LLM struct {
	BaseUrl string `json:"base_url"`
	ApiKey  string `json:"api_key"`
	Model   string `json:"model"`
	Timeout string `json:"timeout"`
}

type Log struct {
	Level string `json:"level"`
	File  string `json:"file"`
}

type Concurrency struct {
	Qps int32 `json:"qps"`
	Rpm int32 `json:"rpm"`
}

type Pipeline struct {
	TrustThreshold int32  `json:"trust_threshold"`
	ChildAgeLimit  int32  `json:"child_age_limit"`
	DefaultBrand   string `json:"default_brand"`
}

type Catalog struct {
	Path string `json:"path"`
}

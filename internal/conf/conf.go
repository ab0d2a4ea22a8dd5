package conf

type Bootstrap struct {
	Server *Server
	Finder *Finder
}

type Server struct {
	Http *HTTP
}

type HTTP struct {
	Addr    string
	Timeout string
}

type Finder struct {
	Llm         *LLM         `json:"llm"`
	Sources     *Sources     `json:"sources"`
	Search      *Search      `json:"search"`
	Cache       *Cache       `json:"cache"`
	Refresh     *Refresh     `json:"refresh"`
	Concurrency *Concurrency `json:"concurrency"`
	Log         *Log         `json:"log"`
	Db          *DB          `json:"db"`
}

type LLM struct {
	BaseUrl string `json:"base_url"`
	ApiKey  string `json:"api_key"`
	Model   string `json:"model"`
}

type Sources struct {
	UseMock   bool       `json:"use_mock"`
	Linkedin  *Source    `json:"linkedin"`
	Indeed    *Source    `json:"indeed"`
	Glassdoor *Glassdoor `json:"glassdoor"`
}

type Source struct {
	Enabled bool    `json:"enabled"`
	Timeout int32   `json:"timeout"`
	Rps     float64 `json:"rps"`
}

type Glassdoor struct {
	Enabled    bool    `json:"enabled"`
	Timeout    int32   `json:"timeout"`
	Rps        float64 `json:"rps"`
	PartnerId  string  `json:"partner_id"`
	PartnerKey string  `json:"partner_key"`
}

type Search struct {
	OverallTimeout      int32 `json:"overall_timeout"`
	ScoreTimeout        int32 `json:"score_timeout"`
	RefreshScoreTimeout int32 `json:"refresh_score_timeout"`
}

type Cache struct {
	Expiry int32 `json:"expiry"`
}

type Refresh struct {
	Spec        string `json:"spec"`
	MaxSearches int32  `json:"max_searches"`
	EnrichLimit int32  `json:"enrich_limit"`
}

type Concurrency struct {
	Qps int32 `json:"qps"`
	Rpm int32 `json:"rpm"`
}

type Log struct {
	Level string `json:"level"`
	File  string `json:"file"`
}

type DB struct {
	Host     string `json:"host"`
	Port     int32  `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

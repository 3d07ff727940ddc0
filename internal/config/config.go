package config

import "os"

// Config concentra toda a configuração do serviço, carregada uma única vez
// do ambiente e injetada nos construtores. Nenhum pacote de negócio lê
// variáveis de ambiente diretamente.
type Config struct {
	Port        string
	FrontendURL string
	APIBaseURL  string

	Database Database
	Redis    Redis
	Kafka    Kafka
	BillDesk BillDesk
	Zoho     Zoho
	Admin    Admin
}

// Database contém os parâmetros de conexão com o PostgreSQL
type Database struct {
	User     string
	Password string
	Host     string
	Port     string
	Name     string
}

// Redis contém os parâmetros de conexão com o cache de produtos
type Redis struct {
	Host     string
	Port     string
	Password string
	Enabled  bool
}

// Kafka contém os parâmetros do publicador de eventos
type Kafka struct {
	Broker string
	Topic  string
}

// Configured indica se há um broker para publicar eventos
func (k Kafka) Configured() bool {
	return k.Broker != ""
}

// BillDesk contém as credenciais do gateway de pagamento
type BillDesk struct {
	MerchantID string
	SecretKey  string
	ReturnURL  string
	RequestURL string
}

// Configured indica se o gateway real está habilitado; sem credenciais o
// fluxo de pagamento usa o bypass de desenvolvimento
func (b BillDesk) Configured() bool {
	return b.MerchantID != "" && b.SecretKey != "" && b.ReturnURL != ""
}

// Zoho contém as credenciais e endpoints do CRM
type Zoho struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	Module       string
	AccountsURL  string
	APIBaseURL   string
}

// Configured indica se a sincronização com o CRM está habilitada
func (z Zoho) Configured() bool {
	return z.ClientID != "" && z.ClientSecret != "" && z.RefreshToken != ""
}

// Admin contém a credencial única do console administrativo
type Admin struct {
	Username     string
	Password     string
	PasswordHash string
	JWTSecret    string
}

// Load carrega a configuração a partir das variáveis de ambiente
func Load() Config {
	zohoDC := getEnv("ZOHO_DC", "com")
	return Config{
		Port:        getEnv("PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
		APIBaseURL:  getEnv("API_BASE_URL", "http://localhost:8080"),
		Database: Database{
			User:     getEnv("DATABASE_USER", "root"),
			Password: getEnv("DATABASE_PASSWORD", "pass"),
			Host:     getEnv("DATABASE_HOST", "localhost"),
			Port:     getEnv("DATABASE_PORT", "5432"),
			Name:     getEnv("DATABASE_NAME", "storefront_db"),
		},
		Redis: Redis{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			Enabled:  getEnv("REDIS_ENABLED", "false") == "true",
		},
		Kafka: Kafka{
			Broker: getEnv("KAFKA_BROKER", ""),
			Topic:  getEnv("KAFKA_TOPIC", "storefront-events"),
		},
		BillDesk: BillDesk{
			MerchantID: getEnv("BILLDESK_MERCHANT_ID", ""),
			SecretKey:  getEnv("BILLDESK_SECRET_KEY", ""),
			ReturnURL:  getEnv("BILLDESK_RETURN_URL", ""),
			RequestURL: getEnv("BILLDESK_REQUEST_URL", "https://pgi.billdesk.com/pgidsk/PGIMerchantRequest"),
		},
		Zoho: Zoho{
			ClientID:     getEnv("ZOHO_CLIENT_ID", ""),
			ClientSecret: getEnv("ZOHO_CLIENT_SECRET", ""),
			RefreshToken: getEnv("ZOHO_REFRESH_TOKEN", ""),
			Module:       getEnv("ZOHO_ORDER_MODULE", "Deals"),
			AccountsURL:  getEnv("ZOHO_ACCOUNTS_URL", "https://accounts.zoho.com"),
			APIBaseURL:   getEnv("ZOHO_API_BASE_URL", "https://www.zohoapis."+zohoDC),
		},
		Admin: Admin{
			Username:     getEnv("ADMIN_USERNAME", "admin"),
			Password:     getEnv("ADMIN_PASSWORD", "admin"),
			PasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
			JWTSecret:    getEnv("JWT_SECRET", "skd-admin-secret"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

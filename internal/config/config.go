package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	defaultConfigPath = "/etc/poster/config.ini"
	configPathEnv     = "POSTER_CONFIG"
)

type Config struct {
	Hostname string
	AppEnv   string
	Timezone string

	QueueFile    string
	QueueDSN     string
	AssetsFolder string
	OutputFolder string

	Platform     string
	MaxLateHours int

	TTSOnnxModel string
	TTSConfig    string
	TTSVoice     string
	EspeakVoice  string

	YoutubeUpload   string
	YoutubeCategory string
	YoutubePrivacy  string

	TelegramBotToken string
	TelegramChatID   string

	RabbitMQHost     string
	RabbitMQPort     int
	RabbitMQUser     string
	RabbitMQPassword string
	RabbitMQVHost    string
	RabbitMQQueue    string
}

func Load() (Config, error) {
	// Secrets live in the environment; a local .env is folded in first so
	// development runs match the hosted setup.
	_ = godotenv.Load()

	configPath := os.Getenv(configPathEnv)
	if configPath == "" {
		configPath = defaultConfigPath
	}

	ini, err := readINI(configPath)
	if err != nil {
		// The defaults plus environment variables are a complete setup, so a
		// missing config file is fine. A malformed one is not.
		if !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("load config %s: %w", configPath, err)
		}
		ini = iniData{}
	}

	cfg := Config{}
	cfg.Hostname = ini.get("app", "hostname")
	if cfg.Hostname == "" {
		if host, err := os.Hostname(); err == nil {
			cfg.Hostname = host
		}
	}
	cfg.AppEnv = ini.getDefault("app", "env", "production")
	cfg.Timezone = ini.getDefault("app", "timezone", "Asia/Jakarta")

	cfg.QueueFile = ini.getDefault("app", "queue_file", "queue.csv")
	cfg.QueueDSN = firstNonEmpty(ini.get("queue", "dsn"), os.Getenv("QUEUE_DSN"))
	cfg.AssetsFolder = ini.getDefault("app", "assets_folder", "assets")
	cfg.OutputFolder = ini.getDefault("app", "output_folder", "out")

	cfg.Platform = ini.getDefault("post", "platform", "YT")
	cfg.MaxLateHours = ini.getIntDefault("post", "max_late_hours", 12)

	cfg.TTSOnnxModel = ini.get("tts", "onnx_model")
	cfg.TTSConfig = ini.get("tts", "config_file")
	cfg.TTSVoice = ini.get("tts", "voice")
	cfg.EspeakVoice = ini.getDefault("tts", "espeak_voice", "id")

	cfg.YoutubeUpload = ini.get("paths", "youtube_upload_script")
	cfg.YoutubeCategory = ini.getDefault("youtube", "category", "22")
	cfg.YoutubePrivacy = ini.getDefault("youtube", "privacy_status", "public")

	cfg.TelegramBotToken = firstNonEmpty(ini.get("telegram", "bot_token"), os.Getenv("TELEGRAM_BOT_TOKEN"))
	cfg.TelegramChatID = firstNonEmpty(ini.get("telegram", "chat_id"), os.Getenv("TELEGRAM_CHAT_ID"))

	cfg.RabbitMQHost = ini.get("rabbitmq", "host")
	cfg.RabbitMQPort = ini.getIntDefault("rabbitmq", "port", 5672)
	cfg.RabbitMQUser = ini.getDefault("rabbitmq", "user", "guest")
	cfg.RabbitMQPassword = ini.getDefault("rabbitmq", "password", "guest")
	cfg.RabbitMQVHost = ini.getDefault("rabbitmq", "vhost", "/")
	cfg.RabbitMQQueue = ini.getDefault("rabbitmq", "queue", "post_events")

	if cfg.QueueFile == "" && cfg.QueueDSN == "" {
		return cfg, errors.New("app.queue_file or queue.dsn must be set in config.ini")
	}

	return cfg, nil
}

// EventsEnabled reports whether the AMQP post-event notifier is configured.
func (c Config) EventsEnabled() bool {
	return c.RabbitMQHost != ""
}

func (c Config) RabbitMQURL() string {
	vhost := strings.TrimPrefix(c.RabbitMQVHost, "/")
	return fmt.Sprintf(
		"amqp://%s:%s@%s:%d/%s",
		c.RabbitMQUser,
		c.RabbitMQPassword,
		c.RabbitMQHost,
		c.RabbitMQPort,
		vhost,
	)
}

type iniData struct {
	sections map[string]map[string]string
}

func readINI(path string) (iniData, error) {
	file, err := os.Open(path)
	if err != nil {
		return iniData{}, err
	}
	defer file.Close()

	data := iniData{sections: map[string]map[string]string{}}
	section := "default"
	data.sections[section] = map[string]string{}

	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = strings.TrimSpace(line[1 : len(line)-1])
			section = strings.ToLower(section)
			if section == "" {
				return iniData{}, fmt.Errorf("invalid section header at line %d", lineNo)
			}
			if _, ok := data.sections[section]; !ok {
				data.sections[section] = map[string]string{}
			}
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return iniData{}, fmt.Errorf("invalid line %d: %q", lineNo, line)
		}
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			return iniData{}, fmt.Errorf("empty key at line %d", lineNo)
		}
		value = strings.TrimSpace(value)
		value = trimQuotes(value)
		data.sections[section][key] = value
	}
	if err := scanner.Err(); err != nil {
		return iniData{}, err
	}
	return data, nil
}

func trimQuotes(value string) string {
	if len(value) < 2 {
		return value
	}
	if value[0] == '"' && value[len(value)-1] == '"' {
		return value[1 : len(value)-1]
	}
	if value[0] == '\'' && value[len(value)-1] == '\'' {
		return value[1 : len(value)-1]
	}
	return value
}

func (ini iniData) get(section, key string) string {
	if len(ini.sections) == 0 {
		return ""
	}
	section = strings.ToLower(section)
	key = strings.ToLower(key)
	if section == "" {
		section = "default"
	}
	if values, ok := ini.sections[section]; ok {
		return values[key]
	}
	return ""
}

func (ini iniData) getDefault(section, key, fallback string) string {
	value := ini.get(section, key)
	if value == "" {
		return fallback
	}
	return value
}

func (ini iniData) getIntDefault(section, key string, fallback int) int {
	value := ini.get(section, key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}

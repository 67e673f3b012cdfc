package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type Surface struct {
	Width     int
	Height    int
	LineWidth float64
}

type Config struct {
	Env     string
	Debug   bool
	AppName string
	Build   string

	Server struct {
		URL     string
		ClassID string
		Timeout time.Duration // zero means no timeout
	}
	Export struct {
		Dir string
	}
	Slide      Surface
	Whiteboard Surface
	Pen        struct {
		Color string
	}
	Notify struct {
		Duration time.Duration
	}
	Timer struct {
		Period time.Duration
	}
	Mirror struct {
		Enabled bool
		Port    int
	}
	Network struct {
		CheckInterval time.Duration
		RouteAddr     string
	}
	UI struct {
		Hide     []string // element ids to leave out of the window
		Question string
	}
	Rollbar struct {
		Token string
	}
}

// Load reads defaults, an optional config/.env.<env> file under dir, and
// <ENV>_-prefixed environment variables (e.g. DEV_SERVER_URL).
func Load(dir string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (default), TEST, PROD
	if env == "" {
		env = "DEV"
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	dotEnvPath := filepath.Join(dir, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			return nil, errors.Wrapf(err, "config.godotenv(%s)", dotEnvPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "config.os.Stat(%s)", dotEnvPath)
	}
	v.AutomaticEnv()

	return fromViper(v, env), nil
}

func setDefaults(v *viper.Viper) {
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", false)
	v.SetDefault("appName", "Classroom Board")
	v.SetDefault("build", "dev")

	v.SetDefault("server.url", "http://localhost:5000")
	v.SetDefault("server.classID", "")
	v.SetDefault("server.timeout", time.Duration(0))

	v.SetDefault("export.dir", defaultDownloadDir())

	v.SetDefault("slide.width", 960)
	v.SetDefault("slide.height", 540)
	v.SetDefault("slide.lineWidth", 3.0)
	v.SetDefault("whiteboard.width", 960)
	v.SetDefault("whiteboard.height", 540)
	v.SetDefault("whiteboard.lineWidth", 2.0)
	v.SetDefault("pen.color", "#000000")

	v.SetDefault("notify.duration", 3000*time.Millisecond)
	v.SetDefault("timer.period", time.Second)

	v.SetDefault("mirror.enabled", true)
	v.SetDefault("mirror.port", 8888)

	v.SetDefault("network.checkInterval", 5*time.Second)
	v.SetDefault("network.routeAddr", "8.8.8.8:80")

	v.SetDefault("ui.hide", []string{})
	v.SetDefault("ui.question", "")

	v.SetDefault("rollbar.token", "")
}

func fromViper(v *viper.Viper, env string) *Config {
	c := &Config{
		Env:     env,
		Debug:   v.GetBool("debug"),
		AppName: v.GetString("appName"),
		Build:   v.GetString("build"),
	}
	c.Server.URL = strings.TrimRight(v.GetString("server.url"), "/")
	c.Server.ClassID = v.GetString("server.classID")
	c.Server.Timeout = v.GetDuration("server.timeout")
	c.Export.Dir = v.GetString("export.dir")
	c.Slide = Surface{
		Width:     v.GetInt("slide.width"),
		Height:    v.GetInt("slide.height"),
		LineWidth: v.GetFloat64("slide.lineWidth"),
	}
	c.Whiteboard = Surface{
		Width:     v.GetInt("whiteboard.width"),
		Height:    v.GetInt("whiteboard.height"),
		LineWidth: v.GetFloat64("whiteboard.lineWidth"),
	}
	c.Pen.Color = v.GetString("pen.color")
	c.Notify.Duration = v.GetDuration("notify.duration")
	c.Timer.Period = v.GetDuration("timer.period")
	c.Mirror.Enabled = v.GetBool("mirror.enabled")
	c.Mirror.Port = v.GetInt("mirror.port")
	c.Network.CheckInterval = v.GetDuration("network.checkInterval")
	c.Network.RouteAddr = v.GetString("network.routeAddr")
	c.UI.Hide = v.GetStringSlice("ui.hide")
	c.UI.Question = v.GetString("ui.question")
	c.Rollbar.Token = v.GetString("rollbar.token")
	return c
}

func defaultDownloadDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, "Downloads")
}

// Hidden reports whether the element with the given id was configured out.
func (c *Config) Hidden(id string) bool {
	for _, h := range c.UI.Hide {
		if strings.EqualFold(strings.TrimSpace(h), id) {
			return true
		}
	}
	return false
}

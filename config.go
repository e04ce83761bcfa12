package main

import (
	"fmt"
	"math"
	"os"

	"git.fiblab.net/sim/metro/router"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// 配置文件，命令行中显式给出的参数优先
type Config struct {
	Server ServerConfig     `yaml:"server"`
	Log    LogConfig        `yaml:"log"`
	Data   DataConfig       `yaml:"data"`
	Fares  []FareSlabConfig `yaml:"fares" validate:"omitempty,dive"`
	Store  StoreConfig      `yaml:"store"`
	Cache  CacheConfig      `yaml:"cache"`
}

type ServerConfig struct {
	Listen string `yaml:"listen" validate:"omitempty,hostname_port"`
	Pprof  string `yaml:"pprof" validate:"omitempty,hostname_port"`
}

type LogConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error fatal panic"`
}

type DataConfig struct {
	// {fspath} 或 {db}.{col}
	Edges    string `yaml:"edges"`
	MongoURI string `yaml:"mongo_uri" validate:"omitempty,uri"`
	CacheDir string `yaml:"cache_dir"`
}

type FareSlabConfig struct {
	// 为空表示不设上限
	MaxKm  *float64 `yaml:"max_km" validate:"omitempty,gt=0"`
	Amount int      `yaml:"amount" validate:"gte=0"`
}

type StoreConfig struct {
	Path string `yaml:"path"`
}

type CacheConfig struct {
	Size int `yaml:"size" validate:"gte=0"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return ParseConfig(data)
}

func ParseConfig(data []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := validator.New().Struct(&c); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// 未配置票价时使用默认票价表
func (c *Config) FareTable() (*router.FareTable, error) {
	if len(c.Fares) == 0 {
		return router.DefaultFareTable(), nil
	}
	slabs := make([]router.FareSlab, len(c.Fares))
	for i, f := range c.Fares {
		slabs[i] = router.FareSlab{MaxKm: math.Inf(1), Amount: f.Amount}
		if f.MaxKm != nil {
			slabs[i].MaxKm = *f.MaxKm
		}
	}
	return router.NewFareTable(slabs)
}

// 用命令行参数覆盖配置：显式给出的参数或配置中缺省的项取命令行的值
func (c *Config) Merge(set map[string]bool, flags *CommandLine) {
	pick := func(name string, value string, dst *string) {
		if set[name] || *dst == "" {
			*dst = value
		}
	}
	pick("listen", flags.Listen, &c.Server.Listen)
	pick("pprof", flags.Pprof, &c.Server.Pprof)
	pick("log-level", flags.LogLevel, &c.Log.Level)
	pick("edges", flags.Edges, &c.Data.Edges)
	pick("mongo_uri", flags.MongoURI, &c.Data.MongoURI)
	pick("cache", flags.CacheDir, &c.Data.CacheDir)
	pick("store", flags.StorePath, &c.Store.Path)
	if set["route-cache"] || c.Cache.Size == 0 {
		c.Cache.Size = flags.RouteCacheSize
	}
}

// 命令行参数的取值
type CommandLine struct {
	Listen         string
	Pprof          string
	LogLevel       string
	Edges          string
	MongoURI       string
	CacheDir       string
	StorePath      string
	RouteCacheSize int
}

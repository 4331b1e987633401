package config

import (
	"github.com/blues/efs/internal/logger"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Task     TaskConfig     `mapstructure:"task"`
	Fee      FeeConfig      `mapstructure:"fee"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// TaskConfig 结算批处理配置
type TaskConfig struct {
	Interval  int `mapstructure:"interval"`   // 结算任务执行间隔（秒）
	Workers   int `mapstructure:"workers"`    // 批处理协程池大小
	DBTimeout int `mapstructure:"db_timeout"` // 单个活动的数据库操作超时（秒）
}

// FeeConfig 平台费率配置，注入费用计算器而非写死常量
type FeeConfig struct {
	StandardRate   float64 `mapstructure:"standard_rate"`   // 标准平台费率
	ProgramRate    float64 `mapstructure:"program_rate"`    // 创作者计划折扣费率
	ProcessorRate  float64 `mapstructure:"processor_rate"`  // 支付通道费率
	ProcessorFixed int64   `mapstructure:"processor_fixed"` // 支付通道单笔固定费（分）
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // 日志级别: debug, info, warn, error, fatal
	Output string `mapstructure:"output"` // 输出目标: stdout, stderr, file
	File   string `mapstructure:"file"`   // 日志文件路径（当output为file时使用）
}

// GetLevel 实现 logger.LogConfig 接口
func (l LogConfig) GetLevel() string {
	return l.Level
}

// GetOutput 实现 logger.LogConfig 接口
func (l LogConfig) GetOutput() string {
	return l.Output
}

// GetFile 实现 logger.LogConfig 接口
func (l LogConfig) GetFile() string {
	return l.File
}

func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/efs")

	// 设置默认值
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.dbname", "event_funding")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("task.interval", 3600)
	viper.SetDefault("task.workers", 8)
	viper.SetDefault("task.db_timeout", 5)
	viper.SetDefault("fee.standard_rate", 0.20)
	viper.SetDefault("fee.program_rate", 0.15)
	viper.SetDefault("fee.processor_rate", 0.029)
	viper.SetDefault("fee.processor_fixed", 30)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.output", "stdout")
	viper.SetDefault("log.file", "logs/app.log")

	// 自动读取环境变量
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logger.Warn("Warning: Could not read config file: %v", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		logger.Fatal("Unable to decode config into struct: %v", err)
	}

	return &config
}

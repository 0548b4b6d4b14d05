package config

var AppVersion = "DEVELOPMENT"

const (
	AppName     = "dscontroller"
	LogFile     = "dscontroller.log"
	CfgFile     = "dscontroller.toml"
	LogsDir     = "logs"
	CfgEnv      = "DSCONTROLLER_CFG"
	FormatTOML  = "toml"
	FormatJSON  = "json"
	LogFileSize = 1 // megabytes
	LogBackups  = 2
)

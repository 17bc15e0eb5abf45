// internal/logger/config.go
package logger

type Config struct {
	LogFile     string // пусто: только консоль
	MaxSize     int    // мегабайты
	MaxAge      int    // дни
	MaxBackups  int    // количество файлов
	Compress    bool   // сжимать ротированные файлы
	Development bool
	Pretty      bool // цветной вывод в консоль вместо структурного
}

// DefaultConfig возвращает конфигурацию по умолчанию
func DefaultConfig() *Config {
	return &Config{
		LogFile:     "",
		MaxSize:     100,  // 100 MB
		MaxAge:      7,    // 7 дней
		MaxBackups:  3,    // 3 файла
		Compress:    true, // сжимать старые логи
		Development: false,
		Pretty:      true,
	}
}

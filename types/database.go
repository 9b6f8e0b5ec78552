package types

type DatabaseConfig struct {
	Engine string                `yaml:"engine" envconfig:"DATABASE_ENGINE"`
	Sqlite *SqliteDatabaseConfig `yaml:"sqlite"`
	Pgsql  *PgsqlDatabaseConfig  `yaml:"pgsql"`
}

type SqliteDatabaseConfig struct {
	File         string `yaml:"file" envconfig:"DATABASE_SQLITE_FILE"`
	MaxOpenConns int    `yaml:"maxOpenConns" envconfig:"DATABASE_SQLITE_MAX_OPEN_CONNS"`
	MaxIdleConns int    `yaml:"maxIdleConns" envconfig:"DATABASE_SQLITE_MAX_IDLE_CONNS"`
}

type PgsqlDatabaseConfig struct {
	Username     string `yaml:"user" envconfig:"DATABASE_PGSQL_USERNAME"`
	Password     string `yaml:"password" envconfig:"DATABASE_PGSQL_PASSWORD"`
	Name         string `yaml:"name" envconfig:"DATABASE_PGSQL_NAME"`
	Host         string `yaml:"host" envconfig:"DATABASE_PGSQL_HOST"`
	Port         string `yaml:"port" envconfig:"DATABASE_PGSQL_PORT"`
	MaxOpenConns int    `yaml:"maxOpenConns" envconfig:"DATABASE_PGSQL_MAX_OPEN_CONNS"`
	MaxIdleConns int    `yaml:"maxIdleConns" envconfig:"DATABASE_PGSQL_MAX_IDLE_CONNS"`
}

package config // package config loads application configuration from environment variables

import (
    "log"     // log reports configuration errors and halts execution
    "os"      // os provides access to environment variables
    "strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Strings are used for identifiers and secrets,
// ints for TTLs and cost factors.
type Config struct {
    Env          string // application environment (e.g. "dev", "prod")
    Port         string // HTTP port to listen on
    DBUser       string // database username
    DBPass       string // database password (optional)
    DBHost       string // database host address
    DBPort       string // database port number
    DBName       string // database name
    JWTSecret    string // secret used to sign auth tokens
    TokenTTLDays int    // auth token time-to-live in days
    BcryptCost   int    // bcrypt cost for password hashing

    S3Region    string // region passed to the AWS SDK
    S3Bucket    string // bucket holding uploaded book images
    S3Endpoint  string // custom endpoint (MinIO in dev); empty means AWS default
    S3AccessKey string // static access key for the object store
    S3SecretKey string // static secret key for the object store
    S3PublicURL string // public base URL under which uploaded objects are reachable
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
    return Config{
        Env:          must("APP_ENV"),
        Port:         must("APP_PORT"),
        DBUser:       must("DB_USER"),
        DBPass:       os.Getenv("DB_PASS"), // empty allowed
        DBHost:       must("DB_HOST"),
        DBPort:       must("DB_PORT"),
        DBName:       must("DB_NAME"),
        JWTSecret:    must("JWT_SECRET"),
        TokenTTLDays: intOr("TOKEN_TTL_DAYS", 15),
        BcryptCost:   intOr("BCRYPT_COST", 10),

        S3Region:    must("S3_REGION"),
        S3Bucket:    must("S3_BUCKET"),
        S3Endpoint:  os.Getenv("S3_ENDPOINT"), // empty means real AWS
        S3AccessKey: must("S3_ACCESS_KEY"),
        S3SecretKey: must("S3_SECRET_KEY"),
        S3PublicURL: must("S3_PUBLIC_URL"),
    }
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

// intOr retrieves an integer environment variable, falling back to def when
// the variable is unset.  A set-but-malformed value is a fatal error so a
// typo in deployment config cannot silently change token lifetimes.
func intOr(key string, def int) int {
    s := os.Getenv(key)
    if s == "" {
        return def
    }
    n, err := strconv.Atoi(s)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, s)
    }
    return n
}

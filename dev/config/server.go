package config

// SERVER_YML is the server config used in development mode when no
// config file is provided.
const SERVER_YML = `
site:
  name: "folio"
  owner: "Developer"

listener:
  host: "127.0.0.1"
  port: 5000

store:
  driver: "sqlite"
  database: "dev/db/folio.db"
  autoMigrate: true

security:
  csrfKey:
  secureCookies: false

twilio:
  accountSid:
  authToken:
  messagingServiceSid:
  ownerNumber:
`

package pgwire

import (
	log "github.com/sirupsen/logrus"
)

/*
A Session drives one connection through the login sequence and a single
query: startup, cleartext-password authentication when asked, the query
on the first idle ReadyForQuery, and a successful stop on the second.
Everything else the server sends is recorded and left alone -- key data,
parameter settings, SASL offers, error reports, and unknown messages do
not advance the handshake in this minimal client.
*/
type Session struct {
	conn     *PgConnection
	user     string
	database string
	password string
	query    string
}

/*
NewSession wraps an established connection. The connection must already
be past the SSL negotiation and TLS upgrade.
*/
func NewSession(conn *PgConnection, user, database, password, query string) *Session {
	return &Session{
		conn:     conn,
		user:     user,
		database: database,
		password: password,
		query:    query,
	}
}

/*
Run executes the whole session and returns when the server has reported
idle for the second time, or on the first failure of any kind. There is
no retry: one failed step aborts the session.
*/
func (s *Session) Run() error {
	err := s.conn.WriteMessage(StartupMessage{
		User:     s.user,
		Database: s.database,
	})
	if err != nil {
		return err
	}

	querySent := false
	for {
		msg, err := s.conn.ReadBackendMessage()
		if err != nil {
			return err
		}

		switch m := msg.(type) {
		case AuthenticationCleartextPassword:
			err = s.conn.WriteMessage(PasswordMessage{Password: s.password})
			if err != nil {
				return err
			}
		case ReadyForQuery:
			if m.Status != StatusIdle {
				// No transaction handling here; a non-idle status is
				// observed and nothing more.
				continue
			}
			if querySent {
				return nil
			}
			err = s.conn.WriteMessage(SimpleQuery{Query: s.query})
			if err != nil {
				return err
			}
			querySent = true
		case ErrorResponse:
			log.Warnf("Server reported: %s", m)
		}
	}
}

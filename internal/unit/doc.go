// Package unit turns a compose Project into systemd unit files.
//
// One service unit is rendered per service and one target unit groups them:
//
//	myapp-db.docker-compose.service
//	myapp-web.docker-compose.service
//	myapp.docker-compose.target
//
// Each service moves through Init, Validated, Mapped and Rendered. Any
// failure aborts the run and no units are returned. Configuration keys
// outside the allow-list are skipped and reported as warnings.
//
// Translate runs the whole pipeline: validate the descriptor, apply the
// override, mount bare volumes, then generate.
package unit

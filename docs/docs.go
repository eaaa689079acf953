// Package docs registers the OpenAPI document served under /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/auth/organizer/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Organizer login",
                "parameters": [
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.organizerLoginInput"}}
                ],
                "responses": {
                    "200": {"description": "JWT valid for 24h", "schema": {"type": "object"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.errorEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.errorEnvelope"}}
                }
            }
        },
        "/tournaments/{tournamentID}/start": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["tournaments"],
                "summary": "Start a tournament",
                "description": "Draws round 1 at random and activates the tournament. With an odd team count one team stays unpaired.",
                "parameters": [
                    {"type": "string", "description": "Tournament ID", "name": "tournamentID", "in": "path", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/services.RoundResult"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.errorEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.errorEnvelope"}},
                    "409": {"description": "Tournament not in setup or fewer than 2 teams", "schema": {"$ref": "#/definitions/handlers.errorEnvelope"}}
                }
            }
        },
        "/tournaments/{tournamentID}/rounds/next": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["tournaments"],
                "summary": "Start the next round",
                "description": "Closes the current round, persists team points and creates Swiss pairings for the next round.",
                "parameters": [
                    {"type": "string", "description": "Tournament ID", "name": "tournamentID", "in": "path", "required": true},
                    {"type": "string", "description": "Repeat-safe key; a retry returns the round created by the first call", "name": "Idempotency-Key", "in": "header"}
                ],
                "responses": {
                    "200": {"description": "Replayed", "schema": {"$ref": "#/definitions/services.RoundResult"}},
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/services.RoundResult"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.errorEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.errorEnvelope"}},
                    "409": {"description": "Round incomplete or no pairings possible", "schema": {"$ref": "#/definitions/handlers.errorEnvelope"}}
                }
            }
        },
        "/tournaments/{tournamentID}/finish": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["tournaments"],
                "summary": "Finish a tournament",
                "parameters": [
                    {"type": "string", "description": "Tournament ID", "name": "tournamentID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/services.FinishResult"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.errorEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.errorEnvelope"}},
                    "409": {"description": "Already completed", "schema": {"$ref": "#/definitions/handlers.errorEnvelope"}}
                }
            }
        },
        "/tournaments/{tournamentID}/standings": {
            "get": {
                "produces": ["application/json"],
                "tags": ["tournaments"],
                "summary": "Live standings",
                "description": "Ranks teams by the points of completed matches. Nothing is persisted.",
                "parameters": [
                    {"type": "string", "description": "Tournament ID", "name": "tournamentID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.errorEnvelope"}}
                }
            }
        },
        "/team/access": {
            "get": {
                "produces": ["application/json"],
                "tags": ["teams"],
                "summary": "Resolve a team token",
                "parameters": [
                    {"type": "string", "description": "Team access token", "name": "team-token", "in": "header", "required": true}
                ],
                "responses": {
                    "200": {"description": "Team with its tournament", "schema": {"type": "object"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.errorEnvelope"}}
                }
            }
        },
        "/matches/{matchID}/confirm": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["matches"],
                "summary": "Confirm or unconfirm a match",
                "description": "The match completes once both teams have confirmed it with exactly 4 games recorded.",
                "parameters": [
                    {"type": "string", "description": "Match ID", "name": "matchID", "in": "path", "required": true},
                    {"type": "string", "description": "Team access token", "name": "team-token", "in": "header", "required": true},
                    {"in": "body", "name": "body", "schema": {"$ref": "#/definitions/handlers.confirmMatchInput"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.errorEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.errorEnvelope"}},
                    "409": {"description": "Match does not have 4 games", "schema": {"$ref": "#/definitions/handlers.errorEnvelope"}}
                }
            }
        },
        "/games/scores": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["games"],
                "summary": "Submit or correct the scores of a game",
                "description": "Address a new game with match_id and game_number, or correct an existing one with game_id.",
                "parameters": [
                    {"type": "string", "description": "Team access token", "name": "team-token", "in": "header", "required": true},
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/services.SubmitScoresInput"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.errorEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.errorEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.errorEnvelope"}},
                    "409": {"description": "Match already confirmed or game number taken", "schema": {"$ref": "#/definitions/handlers.errorEnvelope"}},
                    "422": {"description": "Scoring rule violated", "schema": {"$ref": "#/definitions/handlers.errorEnvelope"}}
                }
            }
        },
        "/healthz": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Liveness check",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "503": {"description": "Database unavailable", "schema": {"$ref": "#/definitions/handlers.errorEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "handlers.errorEnvelope": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "field": {"type": "string"}
            }
        },
        "handlers.organizerLoginInput": {
            "type": "object",
            "properties": {"password": {"type": "string"}}
        },
        "handlers.confirmMatchInput": {
            "type": "object",
            "properties": {"unconfirm": {"type": "boolean"}}
        },
        "scoring.Participant": {
            "type": "object",
            "properties": {
                "player_id": {"type": "string"},
                "team": {"type": "integer", "enum": [1, 2]},
                "position": {"type": "integer", "x-nullable": true},
                "tichu_call": {"type": "boolean"},
                "grand_tichu_call": {"type": "boolean"},
                "tichu_success": {"type": "boolean"},
                "bomb_count": {"type": "integer", "minimum": 0, "maximum": 3}
            }
        },
        "services.SubmitScoresInput": {
            "type": "object",
            "properties": {
                "game_id": {"type": "string", "format": "uuid"},
                "match_id": {"type": "string", "format": "uuid"},
                "game_number": {"type": "integer", "minimum": 1, "maximum": 4},
                "team1_score": {"type": "integer"},
                "team2_score": {"type": "integer"},
                "team1_total_score": {"type": "integer"},
                "team2_total_score": {"type": "integer"},
                "team1_double_win": {"type": "boolean"},
                "team2_double_win": {"type": "boolean"},
                "beschiss": {"type": "boolean"},
                "notes": {"type": "string"},
                "participants": {"type": "array", "items": {"$ref": "#/definitions/scoring.Participant"}}
            }
        },
        "services.RoundResult": {
            "type": "object",
            "properties": {
                "tournament": {"type": "object"},
                "round": {"type": "object"},
                "matches": {"type": "array", "items": {"type": "object"}},
                "unpaired_team_ids": {"type": "array", "items": {"type": "string", "format": "uuid"}}
            }
        },
        "services.FinishResult": {
            "type": "object",
            "properties": {
                "tournament": {"type": "object"},
                "final_standings": {"type": "array", "items": {"type": "object"}},
                "standings_url": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Tichu Tournament API",
	Description:      "Round management, score submission and standings for Tichu team tournaments.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

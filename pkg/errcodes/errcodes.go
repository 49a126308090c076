// Package errcodes holds the symbolic error codes surfaced to API clients.
//
// Every code maps to exactly one message. Codes whose message depends on a
// configured limit take the limit as an argument to Message.
package errcodes

import "fmt"

type Code string

const (
	CommentRequired     Code = "COMMENT_REQUIRED"
	PostAuthorInvalid   Code = "POST_AUTHOR_INVALID"
	UserNotExists       Code = "USER_NOT_EXISTS"
	InvalidUser         Code = "INVALID_USER"
	CommentTextRequired Code = "COMMENT_TEXT_REQUIRED"
	MaxLength           Code = "MAX_LENGTH"
	CommentTextBanned   Code = "COMMENT_TEXT_BANNED"
	PostIDInvalid       Code = "POST_ID_INVALID"
	PostNotExists       Code = "POST_NOT_EXISTS"
	CommentNotLinked    Code = "COMMENT_NOT_LINKED"

	PostTitleInvalid       Code = "POST_TITLE_INVALID"
	PostTitleInvalidLength Code = "POST_TITLE_INVALID_LENGTH"
	PostBodyInvalid        Code = "POST_BODY_INVALID"
	PostBodyInvalidLength  Code = "POST_BODY_INVALID_LENGTH"
	InvalidID              Code = "INVALID_ID"
	KeywordsNotExists      Code = "KEYWORDS_NOT_EXISTS"
	KeywordsIsEmpty        Code = "KEYWORDS_IS_EMPTY"

	EmailNotValid         Code = "EMAIL_NOT_VALID"
	EmailAlreadyInUse     Code = "EMAIL_ALREADY_IN_USE"
	PasswordInvalidLength Code = "PASSWORD_INVALID_LENGTH"
	InvalidCredentials    Code = "INVALID_CREDENTIALS"
)

var messages = map[Code]string{
	CommentRequired:     "The comment is required",
	PostAuthorInvalid:   "The author must be a valid identifier",
	UserNotExists:       "The user does not exist",
	InvalidUser:         "The user attempting the action is not the logged user",
	CommentTextRequired: "The comment text is required",
	MaxLength:           "The comment cannot have more than %d characters",
	CommentTextBanned:   "The comment contains forbidden words",
	PostIDInvalid:       "The post id must be a valid identifier",
	PostNotExists:       "Post does not exist",
	CommentNotLinked:    "The comment was created but could not be added to the post",

	PostTitleInvalid:       "The post title is required",
	PostTitleInvalidLength: "The post title cannot have more than %d characters",
	PostBodyInvalid:        "The post body is required",
	PostBodyInvalidLength:  "The post body cannot have more than %d characters",
	InvalidID:              "The id must be a valid identifier",
	KeywordsNotExists:      "You must specify the keywords query string",
	KeywordsIsEmpty:        "keywords query string is empty",

	EmailNotValid:         "The email is not valid",
	EmailAlreadyInUse:     "The email is already in use",
	PasswordInvalidLength: "The password must have at least %d characters",
	InvalidCredentials:    "Invalid email or password",
}

// Message renders the human-readable text of the code. Templated codes
// expect their arguments (e.g. the maximum length for MaxLength).
func (c Code) Message(args ...any) string {
	msg, ok := messages[c]
	if !ok {
		return string(c)
	}
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}

func (c Code) String() string {
	return string(c)
}

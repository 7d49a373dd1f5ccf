package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/nroberts/go-topicrooms/internal/database"
)

const recentTopicsLimit = 5

type FormErrors map[string]string

type HomePageData struct {
	Query        string
	Rooms        []database.Room
	RoomCount    int
	Topics       []database.Topic
	RoomMessages []database.Message
	CurrentUser  *SessionUser
}

type RoomPageData struct {
	Room         database.Room
	RoomMessages []database.Message
	Participants []database.User
	CurrentUser  *SessionUser
}

type RoomFormData struct {
	Room        database.Room
	TopicName   string
	Topics      []database.Topic
	Errors      FormErrors
	CurrentUser *SessionUser
}

type DeletePageData struct {
	ObjectName  string
	CancelURL   string
	CurrentUser *SessionUser
}

type LoginPageData struct {
	Username     string
	ErrorMessage string
}

type RegisterPageData struct {
	Username     string
	EmailAddress string
	Errors       FormErrors
}

type ProfilePageData struct {
	User         database.User
	Rooms        []database.Room
	RoomCount    int
	RoomMessages []database.Message
	Topics       []database.Topic
	CurrentUser  *SessionUser
}

type UserFormData struct {
	User        database.User
	Errors      FormErrors
	CurrentUser *SessionUser
}

type TopicsPageData struct {
	Query       string
	Topics      []database.Topic
	CurrentUser *SessionUser
}

type ActivityPageData struct {
	RoomMessages []database.Message
	CurrentUser  *SessionUser
}

type ErrorPageData struct {
	StatusCode  int
	Message     string
	CurrentUser *SessionUser
}

func (s *TopicRoomsApp) currentUser(r *http.Request) *SessionUser {
	if user, ok := SessionUserFrom(r.Context()); ok {
		return &user
	}
	return nil
}

func (s *TopicRoomsApp) render(w http.ResponseWriter, statusCode int, page string, data any) {
	if err := s.renderer.Render(w, statusCode, page, data); err != nil {
		s.log.Printf("render %s: %v", page, err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (s *TopicRoomsApp) renderError(w http.ResponseWriter, pageErr *PageError) {
	if pageErr.Err != nil {
		s.log.Println("request failed:", pageErr.Err)
	}

	data := ErrorPageData{
		StatusCode: pageErr.StatusCode,
		Message:    pageErr.Message,
	}
	if err := s.renderer.Render(w, pageErr.StatusCode, "error", data); err != nil {
		s.log.Printf("render error page: %v", err)
		http.Error(w, pageErr.Message, pageErr.StatusCode)
	}
}

func (s *TopicRoomsApp) home(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")

	rooms, err := s.db.SearchRooms(q)
	if err != nil {
		s.renderError(w, NewInternalServerError(err))
		return
	}

	topics, err := s.db.ListTopics(recentTopicsLimit)
	if err != nil {
		s.renderError(w, NewInternalServerError(err))
		return
	}

	// the activity panel filters on topic name only, independent of the
	// room search above
	roomMessages, err := s.db.SearchMessagesByTopic(q)
	if err != nil {
		s.renderError(w, NewInternalServerError(err))
		return
	}

	s.render(w, http.StatusOK, "home", HomePageData{
		Query:        q,
		Rooms:        rooms,
		RoomCount:    len(rooms),
		Topics:       topics,
		RoomMessages: roomMessages,
		CurrentUser:  s.currentUser(r),
	})
}

func (s *TopicRoomsApp) room(w http.ResponseWriter, r *http.Request) {
	room, err := s.db.GetRoomByExternalId(r.PathValue("roomId"))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			s.renderError(w, NewNotFoundError())
		} else {
			s.renderError(w, NewInternalServerError(err))
		}
		return
	}

	roomMessages, err := s.db.GetMessagesByRoom(room.Id)
	if err != nil {
		s.renderError(w, NewInternalServerError(err))
		return
	}

	participants, err := s.db.GetParticipants(room.Id)
	if err != nil {
		s.renderError(w, NewInternalServerError(err))
		return
	}

	s.render(w, http.StatusOK, "room", RoomPageData{
		Room:         room,
		RoomMessages: roomMessages,
		Participants: participants,
		CurrentUser:  s.currentUser(r),
	})
}

func (s *TopicRoomsApp) createMessage(w http.ResponseWriter, r *http.Request) {
	user, _ := SessionUserFrom(r.Context())

	room, err := s.db.GetRoomByExternalId(r.PathValue("roomId"))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			s.renderError(w, NewNotFoundError())
		} else {
			s.renderError(w, NewInternalServerError(err))
		}
		return
	}

	roomURL := "/room/" + room.ExternalId + "/"

	body := strings.TrimSpace(r.FormValue("body"))
	if body == "" {
		http.Redirect(w, r, roomURL, http.StatusSeeOther)
		return
	}

	// posting also adds the author to the room's participant set
	_, err = s.db.CreateMessage(database.CreateMessageParams{
		RoomId: room.Id,
		UserId: user.Id,
		Body:   body,
	})
	if err != nil {
		s.renderError(w, NewInternalServerError(err))
		return
	}

	s.incrStat(metricMessagesPosted)
	http.Redirect(w, r, roomURL, http.StatusSeeOther)
}

func (s *TopicRoomsApp) createRoomForm(w http.ResponseWriter, r *http.Request) {
	topics, err := s.db.SearchTopics("")
	if err != nil {
		s.renderError(w, NewInternalServerError(err))
		return
	}

	s.render(w, http.StatusOK, "room_form", RoomFormData{
		Topics:      topics,
		CurrentUser: s.currentUser(r),
	})
}

func (s *TopicRoomsApp) createRoom(w http.ResponseWriter, r *http.Request) {
	user, _ := SessionUserFrom(r.Context())

	name := strings.TrimSpace(r.FormValue("name"))
	topicName := strings.TrimSpace(r.FormValue("topic"))
	description := strings.TrimSpace(r.FormValue("description"))

	if formErrors := validateRoomForm(name, topicName); len(formErrors) > 0 {
		topics, err := s.db.SearchTopics("")
		if err != nil {
			s.renderError(w, NewInternalServerError(err))
			return
		}

		s.render(w, http.StatusUnprocessableEntity, "room_form", RoomFormData{
			Room:        database.Room{Name: name, Description: description},
			TopicName:   topicName,
			Topics:      topics,
			Errors:      formErrors,
			CurrentUser: &user,
		})
		return
	}

	topic, err := s.db.GetOrCreateTopic(topicName)
	if err != nil {
		s.renderError(w, NewInternalServerError(err))
		return
	}

	sid, err := s.generateShortId()
	if err != nil {
		s.renderError(w, NewInternalServerError(err))
		return
	}

	_, err = s.db.CreateRoom(database.CreateRoomParams{
		Name:        name,
		Description: description,
		TopicId:     topic.Id,
		HostId:      user.Id,
		ExternalId:  sid,
	})
	if err != nil {
		s.renderError(w, NewInternalServerError(err))
		return
	}

	s.incrStat(metricRoomsCreated)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *TopicRoomsApp) updateRoomForm(w http.ResponseWriter, r *http.Request) {
	user, _ := SessionUserFrom(r.Context())

	room, err := s.db.GetRoomByExternalId(r.PathValue("roomId"))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			s.renderError(w, NewNotFoundError())
		} else {
			s.renderError(w, NewInternalServerError(err))
		}
		return
	}

	if room.HostId != user.Id {
		s.renderError(w, NewForbiddenError())
		return
	}

	topics, err := s.db.SearchTopics("")
	if err != nil {
		s.renderError(w, NewInternalServerError(err))
		return
	}

	s.render(w, http.StatusOK, "room_form", RoomFormData{
		Room:        room,
		TopicName:   room.TopicName,
		Topics:      topics,
		CurrentUser: &user,
	})
}

func (s *TopicRoomsApp) updateRoom(w http.ResponseWriter, r *http.Request) {
	user, _ := SessionUserFrom(r.Context())

	room, err := s.db.GetRoomByExternalId(r.PathValue("roomId"))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			s.renderError(w, NewNotFoundError())
		} else {
			s.renderError(w, NewInternalServerError(err))
		}
		return
	}

	// only the host may edit a room
	if room.HostId != user.Id {
		s.renderError(w, NewForbiddenError())
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	topicName := strings.TrimSpace(r.FormValue("topic"))
	description := strings.TrimSpace(r.FormValue("description"))

	if formErrors := validateRoomForm(name, topicName); len(formErrors) > 0 {
		topics, err := s.db.SearchTopics("")
		if err != nil {
			s.renderError(w, NewInternalServerError(err))
			return
		}

		room.Name = name
		room.Description = description
		s.render(w, http.StatusUnprocessableEntity, "room_form", RoomFormData{
			Room:        room,
			TopicName:   topicName,
			Topics:      topics,
			Errors:      formErrors,
			CurrentUser: &user,
		})
		return
	}

	topic, err := s.db.GetOrCreateTopic(topicName)
	if err != nil {
		s.renderError(w, NewInternalServerError(err))
		return
	}

	_, err = s.db.UpdateRoom(database.UpdateRoomParams{
		RoomId:      room.Id,
		Name:        name,
		Description: description,
		TopicId:     topic.Id,
	})
	if err != nil {
		s.renderError(w, NewInternalServerError(err))
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *TopicRoomsApp) deleteRoom(w http.ResponseWriter, r *http.Request) {
	user, _ := SessionUserFrom(r.Context())

	room, err := s.db.GetRoomByExternalId(r.PathValue("roomId"))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			s.renderError(w, NewNotFoundError())
		} else {
			s.renderError(w, NewInternalServerError(err))
		}
		return
	}

	// only the host may delete a room
	if room.HostId != user.Id {
		s.renderError(w, NewForbiddenError())
		return
	}

	if r.Method != http.MethodPost {
		s.render(w, http.StatusOK, "delete", DeletePageData{
			ObjectName:  room.Name,
			CancelURL:   "/room/" + room.ExternalId + "/",
			CurrentUser: &user,
		})
		return
	}

	if err := s.db.DeleteRoom(room.Id); err != nil {
		s.renderError(w, NewInternalServerError(err))
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *TopicRoomsApp) deleteMessage(w http.ResponseWriter, r *http.Request) {
	user, _ := SessionUserFrom(r.Context())

	messageId, err := strconv.Atoi(r.PathValue("messageId"))
	if err != nil {
		s.renderError(w, NewNotFoundError())
		return
	}

	msg, err := s.db.GetMessageById(messageId)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			s.renderError(w, NewNotFoundError())
		} else {
			s.renderError(w, NewInternalServerError(err))
		}
		return
	}

	// only the author may delete a message
	if msg.UserId != user.Id {
		s.renderError(w, NewForbiddenError())
		return
	}

	if r.Method != http.MethodPost {
		s.render(w, http.StatusOK, "delete", DeletePageData{
			ObjectName:  msg.Body,
			CancelURL:   "/room/" + msg.RoomExternalId + "/",
			CurrentUser: &user,
		})
		return
	}

	if err := s.db.DeleteMessage(msg.Id); err != nil {
		s.renderError(w, NewInternalServerError(err))
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *TopicRoomsApp) loginPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := SessionUserFrom(r.Context()); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	s.render(w, http.StatusOK, "login", LoginPageData{})
}

func (s *TopicRoomsApp) login(w http.ResponseWriter, r *http.Request) {
	username := strings.ToLower(strings.TrimSpace(r.FormValue("username")))
	password := r.FormValue("password")

	if username == "" || password == "" {
		s.render(w, http.StatusUnprocessableEntity, "login", LoginPageData{
			Username:     username,
			ErrorMessage: "username and password are required",
		})
		return
	}

	// a single authoritative check: fetch by username, compare hashes.
	// The failure message deliberately does not reveal which of the two
	// was wrong.
	user, err := s.db.GetUserByUsername(username)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		s.renderError(w, NewInternalServerError(err))
		return
	}

	if err != nil || !verifyPassword(user.PasswordHash, password) {
		s.render(w, http.StatusUnauthorized, "login", LoginPageData{
			Username:     username,
			ErrorMessage: "username or password is incorrect",
		})
		return
	}

	if err := s.startSession(w, SessionUser{Id: user.Id, Username: user.Username}); err != nil {
		s.renderError(w, NewInternalServerError(err))
		return
	}

	s.incrStat(metricSessionsStarted)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *TopicRoomsApp) logout(w http.ResponseWriter, r *http.Request) {
	// instruct the browser to delete the cookie by overwriting it with an
	// expired empty token
	http.SetCookie(w, createSessionCookie("", -1))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *TopicRoomsApp) registerPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := SessionUserFrom(r.Context()); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	s.render(w, http.StatusOK, "register", RegisterPageData{})
}

func (s *TopicRoomsApp) register(w http.ResponseWriter, r *http.Request) {
	username := strings.ToLower(strings.TrimSpace(r.FormValue("username")))
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	confirm := r.FormValue("confirm_password")

	data := RegisterPageData{
		Username:     username,
		EmailAddress: email,
		Errors:       FormErrors{},
	}

	if username == "" {
		data.Errors["username"] = "username is required"
	}
	if len(password) < minPasswordLen {
		data.Errors["password"] = "password must be at least 8 characters"
	}
	if password != confirm {
		data.Errors["confirm_password"] = "passwords do not match"
	}

	if len(data.Errors) > 0 {
		s.render(w, http.StatusUnprocessableEntity, "register", data)
		return
	}

	pwdHash, err := hashPassword(password)
	if err != nil {
		s.renderError(w, NewInternalServerError(err))
		return
	}

	newUser, err := s.db.CreateUser(database.CreateUserParams{
		Username:     username,
		EmailAddress: email,
		PasswordHash: pwdHash,
	})
	if err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			data.Errors["username"] = "username is already taken"
			s.render(w, http.StatusConflict, "register", data)
		} else {
			s.renderError(w, NewInternalServerError(err))
		}
		return
	}

	// registration logs the new user straight in
	if err := s.startSession(w, SessionUser{Id: newUser.Id, Username: newUser.Username}); err != nil {
		s.renderError(w, NewInternalServerError(err))
		return
	}

	s.incrStat(metricSessionsStarted)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *TopicRoomsApp) userProfile(w http.ResponseWriter, r *http.Request) {
	userId, err := strconv.Atoi(r.PathValue("userId"))
	if err != nil {
		s.renderError(w, NewNotFoundError())
		return
	}

	user, err := s.db.GetUserById(userId)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			s.renderError(w, NewNotFoundError())
		} else {
			s.renderError(w, NewInternalServerError(err))
		}
		return
	}

	rooms, err := s.db.GetRoomsByHost(user.Id)
	if err != nil {
		s.renderError(w, NewInternalServerError(err))
		return
	}

	roomMessages, err := s.db.GetMessagesByUser(user.Id)
	if err != nil {
		s.renderError(w, NewInternalServerError(err))
		return
	}

	topics, err := s.db.SearchTopics("")
	if err != nil {
		s.renderError(w, NewInternalServerError(err))
		return
	}

	s.render(w, http.StatusOK, "profile", ProfilePageData{
		User:         user,
		Rooms:        rooms,
		RoomCount:    len(rooms),
		RoomMessages: roomMessages,
		Topics:       topics,
		CurrentUser:  s.currentUser(r),
	})
}

func (s *TopicRoomsApp) updateUserForm(w http.ResponseWriter, r *http.Request) {
	sessionUser, _ := SessionUserFrom(r.Context())

	user, err := s.db.GetUserById(sessionUser.Id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			s.renderError(w, NewNotFoundError())
		} else {
			s.renderError(w, NewInternalServerError(err))
		}
		return
	}

	s.render(w, http.StatusOK, "user_form", UserFormData{
		User:        user,
		CurrentUser: &sessionUser,
	})
}

func (s *TopicRoomsApp) updateUser(w http.ResponseWriter, r *http.Request) {
	sessionUser, _ := SessionUserFrom(r.Context())

	username := strings.ToLower(strings.TrimSpace(r.FormValue("username")))
	email := strings.TrimSpace(r.FormValue("email"))
	displayName := strings.TrimSpace(r.FormValue("display_name"))
	bio := strings.TrimSpace(r.FormValue("bio"))
	avatarURL := strings.TrimSpace(r.FormValue("avatar_url"))

	data := UserFormData{
		User: database.User{
			Id:           sessionUser.Id,
			Username:     username,
			EmailAddress: email,
			DisplayName:  displayName,
			Bio:          bio,
			AvatarURL:    avatarURL,
		},
		Errors:      FormErrors{},
		CurrentUser: &sessionUser,
	}

	if username == "" {
		data.Errors["username"] = "username is required"
		s.render(w, http.StatusUnprocessableEntity, "user_form", data)
		return
	}

	user, err := s.db.UpdateUser(database.UpdateUserParams{
		UserId:       sessionUser.Id,
		Username:     username,
		EmailAddress: email,
		DisplayName:  displayName,
		Bio:          bio,
		AvatarURL:    avatarURL,
	})
	if err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			data.Errors["username"] = "username is already taken"
			s.render(w, http.StatusConflict, "user_form", data)
		} else {
			s.renderError(w, NewInternalServerError(err))
		}
		return
	}

	// the session cookie carries the username, so reissue it in case the
	// username changed
	if err := s.startSession(w, SessionUser{Id: user.Id, Username: user.Username}); err != nil {
		s.renderError(w, NewInternalServerError(err))
		return
	}

	http.Redirect(w, r, "/profile/"+strconv.Itoa(user.Id)+"/", http.StatusSeeOther)
}

func (s *TopicRoomsApp) topicsPage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")

	topics, err := s.db.SearchTopics(q)
	if err != nil {
		s.renderError(w, NewInternalServerError(err))
		return
	}

	s.render(w, http.StatusOK, "topics", TopicsPageData{
		Query:       q,
		Topics:      topics,
		CurrentUser: s.currentUser(r),
	})
}

func (s *TopicRoomsApp) activityPage(w http.ResponseWriter, r *http.Request) {
	roomMessages, err := s.db.ListMessages()
	if err != nil {
		s.renderError(w, NewInternalServerError(err))
		return
	}

	s.render(w, http.StatusOK, "activity", ActivityPageData{
		RoomMessages: roomMessages,
		CurrentUser:  s.currentUser(r),
	})
}

func (s *TopicRoomsApp) healthCheck(w http.ResponseWriter, _ *http.Request) {
	if err := s.db.Ping(); err != nil {
		s.log.Println("health check:", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func validateRoomForm(name, topicName string) FormErrors {
	formErrors := FormErrors{}
	if name == "" {
		formErrors["name"] = "room name is required"
	}
	if topicName == "" {
		formErrors["topic"] = "topic is required"
	}
	return formErrors
}

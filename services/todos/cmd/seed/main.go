package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"todos/pkg/config"
	"todos/pkg/database"
	"todos/pkg/eventbus"
	"todos/pkg/jwt"
	"todos/pkg/logger"
	"todos/services/todos/internal/entity"
	"todos/services/todos/internal/repo/persistent"
	"todos/services/todos/internal/usecase"
)

type seedUser struct {
	email    string
	name     string
	password string
}

var seedUsers = []seedUser{
	{"alice@example.com", "Alice", "password123"},
	{"bob@example.com", "Bob", "password123"},
	{"carol@example.com", "Carol", "password123"},
}

var seedTodos = []string{
	"Write tests",
	"Review the onboarding checklist",
	"Plan the next sprint",
}

func main() {
	var todosPerUser int
	flag.IntVar(&todosPerUser, "todos", len(seedTodos), "number of todos to create per user")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log := logger.New()
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		panic(err)
	}

	userRepo := persistent.NewUserRepository(db)
	orgRepo := persistent.NewOrganizationRepository(db)
	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTTTL)

	// Seeding runs without listeners, so the bus only matters for its side
	// effect of storing notifications.
	bus := eventbus.New(eventbus.Options{})
	defer bus.Close()

	notifications := usecase.NewNotificationUseCase(persistent.NewNotificationRepository(db), bus, nil, log)
	auth := usecase.NewAuthUseCase(userRepo, orgRepo, jwtService, nil, log)
	orgs := usecase.NewOrganizationUseCase(orgRepo, userRepo, jwtService, log)
	todos := usecase.NewTodoUseCase(persistent.NewTodoRepository(db), orgRepo, notifications, log)

	if err := seed(context.Background(), auth, orgs, todos, todosPerUser, log); err != nil {
		log.Error("Failed to seed database: %v", err)
		panic(err)
	}

	log.Info("Database seeded successfully!")
}

func seed(ctx context.Context, auth usecase.AuthUseCase, orgs usecase.OrganizationUseCase, todos usecase.TodoUseCase, todosPerUser int, log *logger.Logger) error {
	sessions := make([]entity.Session, 0, len(seedUsers))
	for _, u := range seedUsers {
		result, err := auth.Register(ctx, u.email, u.name, u.password)
		if errors.Is(err, usecase.ErrConflict) {
			log.Info("User %s already exists, logging in", u.email)
			result, err = auth.Login(ctx, u.email, u.password)
		}
		if err != nil {
			return fmt.Errorf("user %s: %w", u.email, err)
		}
		if result.Organization == nil {
			return fmt.Errorf("user %s has no organization", u.email)
		}
		sessions = append(sessions, entity.Session{
			UserID:         result.User.ID,
			OrganizationID: result.Organization.ID,
			Role:           result.Role,
		})
	}

	// Everyone joins the first user's workspace.
	owner := sessions[0]
	for i, u := range seedUsers[1:] {
		_, err := orgs.AddMember(ctx, owner, u.email, entity.RoleMember)
		if err != nil && !errors.Is(err, usecase.ErrConflict) {
			return fmt.Errorf("add %s to workspace: %w", u.email, err)
		}
		sessions[i+1].OrganizationID = owner.OrganizationID
		sessions[i+1].Role = entity.RoleMember
	}

	created := 0
	for i, s := range sessions {
		for j := 0; j < todosPerUser; j++ {
			title := fmt.Sprintf("%s (%s)", seedTodos[j%len(seedTodos)], seedUsers[i].name)
			if _, err := todos.Create(ctx, s, title, ""); err != nil {
				return fmt.Errorf("create todo for %s: %w", seedUsers[i].email, err)
			}
			created++
		}
	}

	log.Info("Created %d users and %d todos", len(sessions), created)
	return nil
}

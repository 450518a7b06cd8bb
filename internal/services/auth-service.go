package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"renovation-system/internal/authz"
	"renovation-system/internal/dto"
	"renovation-system/internal/entities"
	"renovation-system/internal/repositories"
	apperrors "renovation-system/pkg/errors"
	"renovation-system/pkg/service"
)

const userCacheKeyPrefix = "user:"

type AuthServiceInterface interface {
	Login(ctx context.Context, payload dto.LoginDTO) (*dto.TokenDTO, error)
	Register(ctx context.Context, actor authz.Actor, payload dto.RegisterDTO) (*entities.User, error)
	GetUsers(ctx context.Context, actor authz.Actor, search string, limit, offset uint64) ([]entities.User, uint64, error)
	FindUser(ctx context.Context, actor authz.Actor, id uuid.UUID) (*entities.User, error)
	UpdateUser(ctx context.Context, actor authz.Actor, id uuid.UUID, payload dto.UpdateUserDTO) (*entities.User, error)
	DeleteUser(ctx context.Context, actor authz.Actor, id uuid.UUID) error
	ResolveSnapshot(ctx context.Context, id uuid.UUID) (*entities.User, error)
}

type AuthService struct {
	userRepo   repositories.UserRepositoryInterface
	cache      repositories.CacheRepositoryInterface
	jwtService service.JWTService
	cacheTTL   time.Duration
	logger     *zap.Logger
}

func NewAuthService(
	userRepo repositories.UserRepositoryInterface,
	cache repositories.CacheRepositoryInterface,
	jwtService service.JWTService,
	cacheTTL time.Duration,
	logger *zap.Logger,
) AuthServiceInterface {
	return &AuthService{
		userRepo:   userRepo,
		cache:      cache,
		jwtService: jwtService,
		cacheTTL:   cacheTTL,
		logger:     logger,
	}
}

func (s *AuthService) Login(ctx context.Context, payload dto.LoginDTO) (*dto.TokenDTO, error) {
	user, err := s.userRepo.FindUserByPhone(ctx, payload.Phone)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewHttpError(401, "Неверные учётные данные", apperrors.ErrInvalidCredentials)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(payload.Password)); err != nil {
		return nil, apperrors.NewHttpError(401, "Неверные учётные данные", apperrors.ErrInvalidCredentials)
	}

	token, err := s.jwtService.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}

	return &dto.TokenDTO{AccessToken: token, Role: string(user.Role)}, nil
}

func (s *AuthService) Register(ctx context.Context, actor authz.Actor, payload dto.RegisterDTO) (*entities.User, error) {
	if actor.Role != entities.RoleAdmin {
		return nil, apperrors.NewForbiddenError("Регистрация пользователей доступна только администратору")
	}

	role, err := entities.ParseRole(payload.Role)
	if err != nil {
		return nil, err
	}

	if existing, err := s.userRepo.FindUserByPhone(ctx, payload.Phone); err == nil && existing != nil {
		return nil, apperrors.NewConflictError("Пользователь с таким телефоном уже существует")
	} else if err != nil && !apperrors.IsNotFound(err) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &entities.User{
		ID:       uuid.New(),
		Name:     &payload.Name,
		Phone:    payload.Phone,
		Password: string(hash),
		Role:     role,
	}
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) GetUsers(ctx context.Context, actor authz.Actor, search string, limit, offset uint64) ([]entities.User, uint64, error) {
	if !actor.Role.IsPrivileged() {
		return nil, 0, apperrors.NewForbiddenError("Список пользователей доступен только администратору и менеджеру")
	}
	return s.userRepo.GetUsers(ctx, search, limit, offset)
}

func (s *AuthService) FindUser(ctx context.Context, actor authz.Actor, id uuid.UUID) (*entities.User, error) {
	if !actor.Role.IsPrivileged() && actor.ID != id {
		return nil, apperrors.NewForbiddenError("Нет доступа к этому пользователю")
	}
	return s.userRepo.FindUser(ctx, id)
}

func (s *AuthService) UpdateUser(ctx context.Context, actor authz.Actor, id uuid.UUID, payload dto.UpdateUserDTO) (*entities.User, error) {
	if actor.Role != entities.RoleAdmin {
		return nil, apperrors.NewForbiddenError("Изменение пользователей доступно только администратору")
	}

	user, err := s.userRepo.FindUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if payload.Name != nil {
		user.Name = payload.Name
	}
	if payload.Phone != nil {
		user.Phone = *payload.Phone
	}
	if payload.Role != nil {
		role, err := entities.ParseRole(*payload.Role)
		if err != nil {
			return nil, err
		}
		user.Role = role
	}
	if payload.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*payload.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.Password = string(hash)
	}

	if err := s.userRepo.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	s.invalidateSnapshot(ctx, id)
	return user, nil
}

func (s *AuthService) DeleteUser(ctx context.Context, actor authz.Actor, id uuid.UUID) error {
	if actor.Role != entities.RoleAdmin {
		return apperrors.NewForbiddenError("Удаление пользователей доступно только администратору")
	}
	if err := s.userRepo.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.invalidateSnapshot(ctx, id)
	return nil
}

// ResolveSnapshot возвращает снимок пользователя для денормализации
// в заказы. Снимки горячие (каждая правка заказа рабочим их читает),
// поэтому кешируются в Redis с коротким TTL. Отказ кеша не считается
// ошибкой: читаем из базы.
func (s *AuthService) ResolveSnapshot(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	key := userCacheKeyPrefix + id.String()

	if cached, err := s.cache.Get(ctx, key); err == nil && cached != "" {
		var user entities.User
		if err := json.Unmarshal([]byte(cached), &user); err == nil {
			return &user, nil
		}
	}

	user, err := s.userRepo.FindUser(ctx, id)
	if err != nil {
		return nil, err
	}

	snapshot := *user
	snapshot.Password = ""
	if raw, err := json.Marshal(snapshot); err == nil {
		if err := s.cache.Set(ctx, key, string(raw), s.cacheTTL); err != nil {
			s.logger.Warn("Не удалось записать снимок пользователя в кеш", zap.Error(err))
		}
	}
	return user, nil
}

func (s *AuthService) invalidateSnapshot(ctx context.Context, id uuid.UUID) {
	if err := s.cache.Del(ctx, userCacheKeyPrefix+id.String()); err != nil {
		s.logger.Warn("Не удалось сбросить кеш пользователя", zap.Error(err))
	}
}

package files

import (
	"net/http"

	"github.com/dmitrymomot/filevault/binder"
	"github.com/dmitrymomot/filevault/handler"
	"github.com/dmitrymomot/filevault/pkg/validator"
	"github.com/dmitrymomot/filevault/svc/auth"
	filesvc "github.com/dmitrymomot/filevault/svc/files"
)

type listRequest struct {
	Types  []string `query:"types"`
	Search string   `query:"search"`
	Sort   string   `query:"sort"`
	Limit  int      `query:"limit"`
}

type uploadRequest struct {
	File *binder.FileUpload `file:"file"`
}

type fileRequest struct {
	ID string `path:"id"`
}

type renameRequest struct {
	ID   string `path:"id" json:"-"`
	Name string `json:"name"`
}

type shareRequest struct {
	ID     string   `path:"id" json:"-"`
	Emails []string `json:"emails"`
}

type removeUserRequest struct {
	ID    string `path:"id"`
	Email string `path:"email"`
}

type reshareRequest struct {
	ID           string `path:"id" json:"-"`
	AllowReshare *bool  `json:"allowReshare"`
}

type usersResponse struct {
	Users []string `json:"users"`
}

type ownerResponse struct {
	OwnerName string `json:"ownerName"`
}

type repairResponse struct {
	Updated int `json:"updated"`
}

func (s *Service) list(ctx handler.Context, req listRequest) handler.Response {
	list, err := s.files.List(ctx, auth.GetUserFromContext(ctx), filesvc.ListParams{
		Types:  req.Types,
		Search: req.Search,
		Sort:   req.Sort,
		Limit:  req.Limit,
	})
	if err != nil {
		return s.fail(err)
	}
	return handler.JSON(list, handler.WithJSONMeta(map[string]any{"total": len(list)}))
}

func (s *Service) upload(ctx handler.Context, req uploadRequest) handler.Response {
	if req.File == nil {
		return s.fail(validator.ValidationErrors{{Field: "file", Message: "is required"}})
	}
	body, err := req.File.Open()
	if err != nil {
		return s.fail(err)
	}
	defer body.Close()

	f, err := s.files.Upload(ctx, auth.GetUserFromContext(ctx), filesvc.UploadInput{
		Name:        req.File.Filename,
		Size:        req.File.Size,
		ContentType: req.File.ContentType(),
		Body:        body,
	})
	if err != nil {
		return s.fail(err)
	}
	return handler.JSON(f, handler.WithJSONStatus(http.StatusCreated))
}

func (s *Service) get(ctx handler.Context, req fileRequest) handler.Response {
	d, err := s.files.Get(ctx, auth.GetUserFromContext(ctx), req.ID)
	if err != nil {
		return s.fail(err)
	}
	return handler.JSON(d)
}

func (s *Service) rename(ctx handler.Context, req renameRequest) handler.Response {
	f, err := s.files.Rename(ctx, auth.GetUserFromContext(ctx), req.ID, req.Name)
	if err != nil {
		return s.fail(err)
	}
	return handler.JSON(f)
}

func (s *Service) delete(ctx handler.Context, req fileRequest) handler.Response {
	if _, err := s.files.Revoke(ctx, auth.GetUserFromContext(ctx), filesvc.RevokeFile(req.ID)); err != nil {
		return s.fail(err)
	}
	return handler.Empty()
}

func (s *Service) owner(ctx handler.Context, req fileRequest) handler.Response {
	name, err := s.files.OwnerName(ctx, auth.GetUserFromContext(ctx), req.ID)
	if err != nil {
		return s.fail(err)
	}
	return handler.JSON(ownerResponse{OwnerName: name})
}

func (s *Service) share(ctx handler.Context, req shareRequest) handler.Response {
	f, err := s.files.Share(ctx, auth.GetUserFromContext(ctx), req.ID, req.Emails)
	if err != nil {
		return s.fail(err)
	}
	return handler.JSON(usersResponse{Users: f.Users})
}

func (s *Service) removeUser(ctx handler.Context, req removeUserRequest) handler.Response {
	f, err := s.files.Revoke(ctx, auth.GetUserFromContext(ctx), filesvc.RevokeCollaborator(req.ID, req.Email))
	if err != nil {
		return s.fail(err)
	}
	return handler.JSON(usersResponse{Users: f.Users})
}

func (s *Service) toggleReshare(ctx handler.Context, req reshareRequest) handler.Response {
	if req.AllowReshare == nil {
		return s.fail(validator.ValidationErrors{{Field: "allowReshare", Message: "is required"}})
	}
	f, err := s.files.ToggleAllowReshare(ctx, auth.GetUserFromContext(ctx), req.ID, *req.AllowReshare)
	if err != nil {
		return s.fail(err)
	}
	return handler.JSON(f)
}

func (s *Service) usage(ctx handler.Context, _ struct{}) handler.Response {
	return handler.JSON(s.files.Usage(ctx, auth.GetUserFromContext(ctx)))
}

func (s *Service) repair(ctx handler.Context, _ struct{}) handler.Response {
	n, err := s.files.Repair(ctx, auth.GetUserFromContext(ctx))
	if err != nil {
		return s.fail(err)
	}
	return handler.JSON(repairResponse{Updated: n})
}

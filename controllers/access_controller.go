package controller

import (
	"errors"
	"strings"
	"time"

	"github.com/badoux/checkmail"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"startupops/models"
	"startupops/utils"
	"startupops/worker"
)

// isDuplicateGrant recognizes a composite-unique-index violation. Two
// racing grants for the same pair both pass the find-first check; the loser
// surfaces here and must map to the same conflict response.
func isDuplicateGrant(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}

// AccessController manages the grant ledger: founders invite investors and
// mentors onto their startup, and the grant is what dashboard reads are
// checked against.
type AccessController struct {
	DB       *gorm.DB
	Logger   *logrus.Logger
	Notifier *worker.Notifier
}

func NewAccessController(db *gorm.DB, logger *logrus.Logger, notifier *worker.Notifier) *AccessController {
	return &AccessController{
		DB:       db,
		Logger:   logger,
		Notifier: notifier,
	}
}

type GrantAccessRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// GrantInvestorAccess invites an investor-role user onto the founder's
// startup. Gated by the startup plan's investor headcount.
func (ac *AccessController) GrantInvestorAccess(c *fiber.Ctx) error {
	return ac.grantAccess(c, models.AccessInvestor)
}

// GrantMentorAccess is the mentor-flavored twin of GrantInvestorAccess.
func (ac *AccessController) GrantMentorAccess(c *fiber.Ctx) error {
	return ac.grantAccess(c, models.AccessMentor)
}

func (ac *AccessController) grantAccess(c *fiber.Ctx, flavor string) error {
	user := c.Locals("user").(*models.User)

	var req GrantAccessRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}
	if err := checkmail.ValidateFormat(req.Email); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid email address", nil)
	}

	var startup models.Startup
	if err := ac.DB.Where("founder_id = ?", user.ID).First(&startup).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Create your startup first", nil)
	}

	var party models.User
	if err := ac.DB.Where("email = ?", req.Email).First(&party).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "User not found", nil)
	}
	if party.Role != flavor {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "User does not have the "+flavor+" role", nil)
	}

	if err := utils.ResolveStartupPlan(ac.DB, &startup, time.Now()); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to resolve subscription state", err)
	}
	limits, ok := models.LimitsFor(startup.PlanName)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Unknown plan", nil)
	}

	switch flavor {
	case models.AccessInvestor:
		var existing models.InvestorAccess
		if err := ac.DB.Where("investor_id = ? AND startup_id = ?", party.ID, startup.ID).First(&existing).Error; err == nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Access already granted to this investor", nil)
		}

		var count int64
		if err := ac.DB.Model(&models.InvestorAccess{}).Where("startup_id = ?", startup.ID).Count(&count).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to count investor grants", err)
		}
		if err := utils.CheckHeadcount("investor", limits.Investors, count); err != nil {
			return utils.ErrorResponse(c, fiber.StatusForbidden, err.Error(), nil)
		}

		grant := models.InvestorAccess{
			InvestorID:  party.ID,
			StartupID:   startup.ID,
			GrantedByID: user.ID,
		}
		if err := ac.DB.Create(&grant).Error; err != nil {
			if isDuplicateGrant(err) {
				return utils.ErrorResponse(c, fiber.StatusBadRequest, "Access already granted to this investor", nil)
			}
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to grant access", err)
		}
		ac.notifyGrant(party.Email, startup.Name, flavor, startup.ID, party.ID)
		return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(grant))

	default:
		var existing models.MentorAccess
		if err := ac.DB.Where("mentor_id = ? AND startup_id = ?", party.ID, startup.ID).First(&existing).Error; err == nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Access already granted to this mentor", nil)
		}

		var count int64
		if err := ac.DB.Model(&models.MentorAccess{}).Where("startup_id = ?", startup.ID).Count(&count).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to count mentor grants", err)
		}
		if err := utils.CheckHeadcount("mentor", limits.Mentors, count); err != nil {
			return utils.ErrorResponse(c, fiber.StatusForbidden, err.Error(), nil)
		}

		grant := models.MentorAccess{
			MentorID:    party.ID,
			StartupID:   startup.ID,
			GrantedByID: user.ID,
		}
		if err := ac.DB.Create(&grant).Error; err != nil {
			if isDuplicateGrant(err) {
				return utils.ErrorResponse(c, fiber.StatusBadRequest, "Access already granted to this mentor", nil)
			}
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to grant access", err)
		}
		ac.notifyGrant(party.Email, startup.Name, flavor, startup.ID, party.ID)
		return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(grant))
	}
}

func (ac *AccessController) notifyGrant(email, startupName, flavor string, startupID, partyID uint) {
	ac.Notifier.Enqueue(worker.Notification{
		Kind:        worker.NotifyAccessGranted,
		To:          email,
		StartupName: startupName,
		Flavor:      flavor,
	})
	ac.Logger.WithFields(logrus.Fields{
		"startup_id": startupID,
		"party_id":   partyID,
		"flavor":     flavor,
	}).Info("access granted")
}

// RevokeAccess deletes a grant by id and flavor. Only the founder of the
// startup the grant points at may revoke it; a valid grant id belonging to
// another founder's startup is denied, not leaked as missing.
func (ac *AccessController) RevokeAccess(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	grantID := utils.ParseUint(c.Params("id"))
	flavor := c.Params("type")

	if flavor != models.AccessInvestor && flavor != models.AccessMentor {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Access type must be investor or mentor", nil)
	}

	var startupID uint
	switch flavor {
	case models.AccessInvestor:
		var grant models.InvestorAccess
		if err := ac.DB.First(&grant, grantID).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Access grant not found", nil)
		}
		startupID = grant.StartupID
		if !ac.ownsStartup(user.ID, startupID) {
			return utils.ErrorResponse(c, fiber.StatusForbidden, "You can only revoke access to your own startup", nil)
		}
		if err := ac.DB.Unscoped().Delete(&grant).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to revoke access", err)
		}
	default:
		var grant models.MentorAccess
		if err := ac.DB.First(&grant, grantID).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Access grant not found", nil)
		}
		startupID = grant.StartupID
		if !ac.ownsStartup(user.ID, startupID) {
			return utils.ErrorResponse(c, fiber.StatusForbidden, "You can only revoke access to your own startup", nil)
		}
		if err := ac.DB.Unscoped().Delete(&grant).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to revoke access", err)
		}
	}

	ac.Logger.WithFields(logrus.Fields{
		"startup_id": startupID,
		"grant_id":   grantID,
		"flavor":     flavor,
	}).Info("access revoked")

	return c.JSON(fiber.Map{
		"message": "Access revoked",
	})
}

func (ac *AccessController) ownsStartup(userID, startupID uint) bool {
	var startup models.Startup
	if err := ac.DB.First(&startup, startupID).Error; err != nil {
		return false
	}
	return startup.FounderID == userID
}

// ListInvestorStartups returns the startups the calling investor holds
// grants for, most recent grant first.
func (ac *AccessController) ListInvestorStartups(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var grants []models.InvestorAccess
	if err := ac.DB.Where("investor_id = ?", user.ID).Order("created_at DESC").Preload("Startup").Find(&grants).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load access grants", err)
	}

	return c.JSON(utils.SuccessResponse(grants))
}

// ListMentorStartups is the mentor-flavored twin of ListInvestorStartups.
func (ac *AccessController) ListMentorStartups(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var grants []models.MentorAccess
	if err := ac.DB.Where("mentor_id = ?", user.ID).Order("created_at DESC").Preload("Startup").Find(&grants).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load access grants", err)
	}

	return c.JSON(utils.SuccessResponse(grants))
}

// InvestorDashboard returns the full read-only view of one startup to an
// investor holding a grant for it.
func (ac *AccessController) InvestorDashboard(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	startupID := utils.ParseUint(c.Params("startupId"))

	var grant models.InvestorAccess
	if err := ac.DB.Where("investor_id = ? AND startup_id = ?", user.ID, startupID).First(&grant).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "You do not have access to this startup", nil)
	}

	return ac.dashboard(c, startupID)
}

// MentorDashboard is the mentor-flavored twin of InvestorDashboard.
func (ac *AccessController) MentorDashboard(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	startupID := utils.ParseUint(c.Params("startupId"))

	var grant models.MentorAccess
	if err := ac.DB.Where("mentor_id = ? AND startup_id = ?", user.ID, startupID).First(&grant).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "You do not have access to this startup", nil)
	}

	return ac.dashboard(c, startupID)
}

func (ac *AccessController) dashboard(c *fiber.Ctx, startupID uint) error {
	var startup models.Startup
	if err := ac.DB.First(&startup, startupID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Startup not found", nil)
	}

	var tasks []models.Task
	if err := ac.DB.Where("startup_id = ?", startupID).Order("created_at DESC").Find(&tasks).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load tasks", err)
	}

	var milestones []models.Milestone
	if err := ac.DB.Where("startup_id = ?", startupID).Order("target_date ASC").Find(&milestones).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load milestones", err)
	}

	var feedback []models.Feedback
	if err := ac.DB.Where("startup_id = ?", startupID).Order("created_at DESC").Find(&feedback).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load feedback", err)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"startup":    startup,
		"tasks":      tasks,
		"milestones": milestones,
		"feedback":   feedback,
	}))
}

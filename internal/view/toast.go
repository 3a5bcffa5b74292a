package view

import "fmt"

type ToastKind string

const (
	ToastSuccess   ToastKind = "success"
	ToastDanger    ToastKind = "danger"
	ToastWarning   ToastKind = "warning"
	ToastInfo      ToastKind = "info"
	ToastSecondary ToastKind = "secondary"
)

// Toast is a transient notification; it is never persisted.
type Toast struct {
	Title   string    `json:"title"`
	Message string    `json:"message"`
	Kind    ToastKind `json:"kind"`
}

// Notice codes carried across redirects in the ?notice= query parameter.
const (
	NoticeWelcome    = "welcome"
	NoticeCreated    = "created"
	NoticeToggled    = "toggled"
	NoticeDeleted    = "deleted"
	NoticeRefreshed  = "refreshed"
	NoticeLogout     = "logout"
	NoticeRecovered  = "recovered"
	NoticeShortTitle = "short_title"
	NoticeNotFound   = "not_found"
	NoticeSoonReport = "soon_reports"
	NoticeSoonUsers  = "soon_users"
)

var notices = map[string]Toast{
	NoticeCreated:    {Title: "Criado!", Message: "Novo registro adicionado.", Kind: ToastSuccess},
	NoticeToggled:    {Title: "Atualizado!", Message: "Status alterado com sucesso.", Kind: ToastInfo},
	NoticeDeleted:    {Title: "Removido!", Message: "Registro excluído (simulado).", Kind: ToastDanger},
	NoticeRefreshed:  {Title: "Atualizado", Message: "Dados recarregados.", Kind: ToastSecondary},
	NoticeLogout:     {Title: "Saindo...", Message: "Sessão encerrada.", Kind: ToastSecondary},
	NoticeRecovered:  {Title: "Enviado!", Message: "Link de recuperação (simulado) enviado para seu e-mail.", Kind: ToastSuccess},
	NoticeShortTitle: ShortTitleToast(),
	NoticeNotFound:   NotFoundToast(),
	NoticeSoonReport: {Title: "Em breve", Message: "Essa página seria criada na próxima etapa.", Kind: ToastInfo},
	NoticeSoonUsers:  {Title: "Em breve", Message: "Gestão de usuários seria um módulo futuro.", Kind: ToastInfo},
}

// NoticeToast resolves a notice code. role is only used by the welcome notice.
func NoticeToast(code, role string) (Toast, bool) {
	if code == NoticeWelcome {
		return Toast{Title: "Sucesso!", Message: fmt.Sprintf("Bem-vindo, %s.", role), Kind: ToastSuccess}, true
	}
	t, ok := notices[code]
	return t, ok
}

func InvalidFormToast() Toast {
	return Toast{Title: "Ops!", Message: "Revise os campos do formulário.", Kind: ToastWarning}
}

func LoginFailedToast(reason string) Toast {
	return Toast{Title: "Falha no login", Message: reason, Kind: ToastDanger}
}

func ShortTitleToast() Toast {
	return Toast{Title: "Atenção", Message: "Digite um título com pelo menos 3 caracteres.", Kind: ToastWarning}
}

func InvalidRecoveryToast() Toast {
	return Toast{Title: "Atenção", Message: "Digite um e-mail válido para simular o envio.", Kind: ToastWarning}
}

func ThrottledToast() Toast {
	return Toast{Title: "Aguarde", Message: "Muitas tentativas de login. Tente novamente em instantes.", Kind: ToastWarning}
}

func NotFoundToast() Toast {
	return Toast{Title: "Aviso", Message: "Registro não encontrado.", Kind: ToastSecondary}
}
